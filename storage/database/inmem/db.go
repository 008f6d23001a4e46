package inmemdb

import (
	"sync"

	"github.com/kipawa/jaribio/core/catalog"
	"github.com/kipawa/jaribio/core/quiz"
	"github.com/kipawa/jaribio/core/report"
	"github.com/kipawa/jaribio/core/user"
)

// DB is a mutex-guarded in-memory store backing the repositories in this
// package. Intended for tests and local development.
type DB struct {
	mu sync.RWMutex

	users      map[string]*user.User
	categories map[string]*catalog.Category
	classes    map[string]*catalog.Class
	subjects   map[string]*catalog.Subject
	chapters   map[string]*catalog.Chapter

	questions map[string]*quiz.Question
	quizzes   map[string]*quiz.Quiz
	records   map[string]*quiz.QuizRecord // keyed by userID+"/"+quizID

	reports map[string]*report.Report

	// insertion sequence per record ID; map iteration is unordered and
	// question order matters for grading
	seqs map[string]int
	seq  int
}

func (db *DB) nextSeq(id string) {
	db.seq++
	db.seqs[id] = db.seq
}

func NewDB() *DB {
	return &DB{
		users:      make(map[string]*user.User),
		categories: make(map[string]*catalog.Category),
		classes:    make(map[string]*catalog.Class),
		subjects:   make(map[string]*catalog.Subject),
		chapters:   make(map[string]*catalog.Chapter),
		questions:  make(map[string]*quiz.Question),
		quizzes:    make(map[string]*quiz.Quiz),
		records:    make(map[string]*quiz.QuizRecord),
		reports:    make(map[string]*report.Report),
		seqs:       make(map[string]int),
	}
}

func recordKey(userID, quizID string) string { return userID + "/" + quizID }
