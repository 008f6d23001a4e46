package catalog_test

import (
	"context"
	"testing"

	"github.com/kipawa/jaribio/core"
	"github.com/kipawa/jaribio/core/catalog"
	inmemdb "github.com/kipawa/jaribio/storage/database/inmem"
)

func setup(t *testing.T) *catalog.Service {
	t.Helper()
	return catalog.NewService(inmemdb.NewCatalogRepository(inmemdb.NewDB()))
}

func TestCategoryNameUnique(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	cat, err := svc.CreateCategory(ctx, catalog.NewCategory{Name: "Sciences", ImageURL: "https://img.test.cd/sci.png"})
	if err != nil {
		t.Fatalf("CreateCategory(): %v", err)
	}
	if cat.Status != catalog.CategoryStatusActive {
		t.Errorf("status = %q, want %q", cat.Status, catalog.CategoryStatusActive)
	}

	if _, err = svc.CreateCategory(ctx, catalog.NewCategory{Name: "Sciences", ImageURL: "https://img.test.cd/dup.png"}); err == nil {
		t.Error("CreateCategory() expected an error for a duplicate name")
	} else if vErr, ok := err.(*core.ValidationError); !ok {
		t.Errorf("CreateCategory() error = %T, want *core.ValidationError", err)
	} else if len(vErr.Fields) != 1 || vErr.Fields[0].Field != "name" {
		t.Errorf("field errors = %+v", vErr.Fields)
	}

	// renaming onto another category's name is rejected too
	other, err := svc.CreateCategory(ctx, catalog.NewCategory{Name: "Arts", ImageURL: "https://img.test.cd/arts.png"})
	if err != nil {
		t.Fatalf("CreateCategory(): %v", err)
	}
	if _, err = svc.UpdateCategory(ctx, other.ID, catalog.UpdateCategory{Name: "Sciences"}); err == nil {
		t.Error("UpdateCategory() expected an error for a duplicate name")
	}

	// keeping its own name is fine
	if _, err = svc.UpdateCategory(ctx, other.ID, catalog.UpdateCategory{Name: "Arts", Status: catalog.CategoryStatusInactive}); err != nil {
		t.Errorf("UpdateCategory(): %v", err)
	}
}

func TestCategoryCRUD(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	if _, err := svc.GetCategory(ctx, "missing"); err != catalog.ErrCategoryNotFound {
		t.Errorf("GetCategory() error = %v, want %v", err, catalog.ErrCategoryNotFound)
	}

	names := []string{"Sciences", "Arts", "Languages"}
	for _, name := range names {
		if _, err := svc.CreateCategory(ctx, catalog.NewCategory{Name: name, ImageURL: "https://img.test.cd/c.png"}); err != nil {
			t.Fatalf("CreateCategory(%s): %v", name, err)
		}
	}

	categories, err := svc.QueryCategories(ctx)
	if err != nil {
		t.Fatalf("QueryCategories(): %v", err)
	}
	if len(categories) != len(names) {
		t.Fatalf("categories = %d, want %d", len(categories), len(names))
	}
	for i, cat := range categories {
		if cat.Name != names[i] {
			t.Errorf("categories[%d] = %q, want %q", i, cat.Name, names[i])
		}
	}

	if err = svc.DeleteCategory(ctx, categories[0].ID); err != nil {
		t.Fatalf("DeleteCategory(): %v", err)
	}
	if _, err = svc.GetCategory(ctx, categories[0].ID); err != catalog.ErrCategoryNotFound {
		t.Errorf("GetCategory() error = %v, want %v", err, catalog.ErrCategoryNotFound)
	}
}

func TestCreateSubjectRequiresClass(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	if _, err := svc.CreateSubject(ctx, catalog.NewSubject{ClassID: "missing", Name: "Maths"}); err != catalog.ErrClassNotFound {
		t.Errorf("CreateSubject() error = %v, want %v", err, catalog.ErrClassNotFound)
	}

	cls, err := svc.CreateClass(ctx, catalog.NewClass{Name: "Form 1"})
	if err != nil {
		t.Fatalf("CreateClass(): %v", err)
	}
	sub, err := svc.CreateSubject(ctx, catalog.NewSubject{ClassID: cls.ID, Name: "Maths"})
	if err != nil {
		t.Fatalf("CreateSubject(): %v", err)
	}
	if sub.ClassID != cls.ID {
		t.Errorf("subject class = %q, want %q", sub.ClassID, cls.ID)
	}
}

func TestCreateChapterRequiresSubject(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	if _, err := svc.CreateChapter(ctx, catalog.NewChapter{SubjectID: "missing", Name: "Algebra"}); err != catalog.ErrSubjectNotFound {
		t.Errorf("CreateChapter() error = %v, want %v", err, catalog.ErrSubjectNotFound)
	}
}

func TestQueryChaptersCreationOrder(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	cls, _ := svc.CreateClass(ctx, catalog.NewClass{Name: "Form 2"})
	sub, err := svc.CreateSubject(ctx, catalog.NewSubject{ClassID: cls.ID, Name: "Physics"})
	if err != nil {
		t.Fatalf("CreateSubject(): %v", err)
	}

	names := []string{"Motion", "Forces", "Energy"}
	for i, name := range names {
		if _, err := svc.CreateChapter(ctx, catalog.NewChapter{SubjectID: sub.ID, Name: name, Number: i + 1}); err != nil {
			t.Fatalf("CreateChapter(%s): %v", name, err)
		}
	}

	chaps, err := svc.QueryChapters(ctx, sub.ID)
	if err != nil {
		t.Fatalf("QueryChapters(): %v", err)
	}
	if len(chaps) != len(names) {
		t.Fatalf("chapters = %d, want %d", len(chaps), len(names))
	}
	for i, chap := range chaps {
		if chap.Name != names[i] {
			t.Errorf("chapters[%d] = %q, want %q", i, chap.Name, names[i])
		}
	}
}

func TestQuerySubjectsWithChapters(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	cls, _ := svc.CreateClass(ctx, catalog.NewClass{Name: "Form 3"})
	sub1, _ := svc.CreateSubject(ctx, catalog.NewSubject{ClassID: cls.ID, Name: "Chemistry"})
	sub2, _ := svc.CreateSubject(ctx, catalog.NewSubject{ClassID: cls.ID, Name: "History"})
	_, _ = svc.CreateChapter(ctx, catalog.NewChapter{SubjectID: sub1.ID, Name: "Atoms", Number: 1})

	subs, err := svc.QuerySubjectsWithChapters(ctx, cls.ID)
	if err != nil {
		t.Fatalf("QuerySubjectsWithChapters(): %v", err)
	}
	if len(subs) != 2 {
		t.Fatalf("subjects = %d, want 2", len(subs))
	}
	for _, sub := range subs {
		switch sub.ID {
		case sub1.ID:
			if len(sub.Chapters) != 1 {
				t.Errorf("%s chapters = %d, want 1", sub.Name, len(sub.Chapters))
			}
		case sub2.ID:
			if len(sub.Chapters) != 0 {
				t.Errorf("%s chapters = %d, want 0", sub.Name, len(sub.Chapters))
			}
		}
	}
}
