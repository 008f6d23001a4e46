package tests

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/kipawa/jaribio/core"
	"github.com/kipawa/jaribio/core/catalog"
	"github.com/kipawa/jaribio/core/user"
	testutil "github.com/kipawa/jaribio/tests"
)

func listClasses(t *testing.T, token string) []catalog.Class {
	t.Helper()

	req, rec := newAuthRequest(http.MethodGet, "/v1/classes", token)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /v1/classes code = %v; want %v", rec.Code, http.StatusOK)
	}
	var classes []catalog.Class
	if err := json.Unmarshal(rec.Body.Bytes(), &classes); err != nil {
		t.Fatalf("json.Unmarshal(): %v", err)
	}
	return classes
}

func containsClass(classes []catalog.Class, id string) bool {
	for _, cls := range classes {
		if cls.ID == id {
			return true
		}
	}
	return false
}

func Test_catalogApi_classCRUD(t *testing.T) {
	cache.Flush()
	admin := testutil.CreateUser(t, usrRepo, "Cat Admin", "catadmin", "catadmin@test.cd", "LePassword", user.AllRoles, true)
	student := testutil.CreateUser(t, usrRepo, "Cat Student", "catstudent", "catstudent@test.cd", "LePassword", []string{user.RoleStudent}, true)
	adminToken := getToken(t, admin)

	// students can read but not write
	req, rec := newAuthRequest(http.MethodPost, "/v1/classes", getToken(t, student), marchallObj(t, catalog.NewClass{Name: "Form 1"}))
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"})}, rec)

	req, rec = newAuthRequest(http.MethodPost, "/v1/classes", adminToken, marchallObj(t, catalog.NewClass{Name: "Form 1", Section: "A"}))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST /v1/classes code = %v; want %v", rec.Code, http.StatusCreated)
	}
	var cls catalog.Class
	if err := json.Unmarshal(rec.Body.Bytes(), &cls); err != nil {
		t.Fatalf("json.Unmarshal(): %v", err)
	}
	if cls.Name != "Form 1" || cls.ID == "" {
		t.Errorf("created class = %+v", cls)
	}

	if !containsClass(listClasses(t, adminToken), cls.ID) {
		t.Error("expected the new class in the listing")
	}

	// update
	req, rec = newAuthRequest(http.MethodPut, "/v1/classes/"+cls.ID, adminToken, marchallObj(t, catalog.UpdateClass{Name: "Form One"}))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("PUT /v1/classes/:id code = %v; want %v", rec.Code, http.StatusOK)
	}

	// the detail view reflects the update; its cache entry was invalidated
	req, rec = newAuthRequest(http.MethodGet, "/v1/classes/"+cls.ID, adminToken)
	app.ServeHTTP(rec, req)
	var updated catalog.Class
	if err := json.Unmarshal(rec.Body.Bytes(), &updated); err != nil {
		t.Fatalf("json.Unmarshal(): %v", err)
	}
	if updated.Name != "Form One" {
		t.Errorf("class name = %q; want %q", updated.Name, "Form One")
	}

	// delete
	req, rec = newAuthRequest(http.MethodDelete, "/v1/classes/"+cls.ID, adminToken)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("DELETE /v1/classes/:id code = %v; want %v", rec.Code, http.StatusNoContent)
	}
	if containsClass(listClasses(t, adminToken), cls.ID) {
		t.Error("deleted class still in the listing")
	}
}

// A cached listing is served as-is until a write through the API invalidates it.
func Test_catalogApi_cacheInvalidation(t *testing.T) {
	cache.Flush()
	admin := testutil.CreateUser(t, usrRepo, "Inv Admin", "invadmin", "invadmin@test.cd", "LePassword", user.AllRoles, true)
	token := getToken(t, admin)

	// prime the cache
	listClasses(t, token)

	// a write that bypasses the API is invisible while the entry lives
	hidden := testutil.CreateClass(t, catRepo, "Hidden Form", "")
	if containsClass(listClasses(t, token), hidden.ID) {
		t.Fatal("listing was not served from cache")
	}

	// a create through the API drops the listing entry
	req, rec := newAuthRequest(http.MethodPost, "/v1/classes", token, marchallObj(t, catalog.NewClass{Name: "Form 9"}))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST /v1/classes code = %v; want %v", rec.Code, http.StatusCreated)
	}
	var created catalog.Class
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("json.Unmarshal(): %v", err)
	}

	classes := listClasses(t, token)
	if !containsClass(classes, hidden.ID) || !containsClass(classes, created.ID) {
		t.Error("expected a fresh listing after invalidation")
	}
}

func Test_catalogApi_cacheTTLExpiry(t *testing.T) {
	cache.Flush()
	origTTL := core.Conf.Cache.TTL
	core.Conf.Cache.TTL = 50 * time.Millisecond
	defer func() { core.Conf.Cache.TTL = origTTL }()

	admin := testutil.CreateUser(t, usrRepo, "TTL Admin", "ttladmin", "ttladmin@test.cd", "LePassword", user.AllRoles, true)
	token := getToken(t, admin)

	listClasses(t, token)
	hidden := testutil.CreateClass(t, catRepo, "Expiring Form", "")
	if containsClass(listClasses(t, token), hidden.ID) {
		t.Fatal("listing was not served from cache")
	}

	time.Sleep(80 * time.Millisecond)
	if !containsClass(listClasses(t, token), hidden.ID) {
		t.Error("expected a fresh listing after the entry expired")
	}
}

// Auth runs before the cache; a primed entry must not leak to anonymous callers.
func Test_catalogApi_cachedRouteStillRequiresAuth(t *testing.T) {
	cache.Flush()
	admin := testutil.CreateUser(t, usrRepo, "Auth Admin", "authadmin", "authadmin@test.cd", "LePassword", user.AllRoles, true)
	listClasses(t, getToken(t, admin))

	req, rec := newRequest(http.MethodGet, "/v1/classes")
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)}, rec)
}

// Class-scoped listings and nested class subject views must come back fresh
// after subject and chapter creates.
func Test_catalogApi_filteredListingInvalidation(t *testing.T) {
	cache.Flush()
	admin := testutil.CreateUser(t, usrRepo, "Flt Admin", "fltadmin", "fltadmin@test.cd", "LePassword", user.AllRoles, true)
	token := getToken(t, admin)

	cls := testutil.CreateClass(t, catRepo, "Filtered Form", "")
	first := testutil.CreateSubject(t, catRepo, cls.ID, "Geography")

	listSubjects := func(path string) []catalog.Subject {
		req, rec := newAuthRequest(http.MethodGet, path, token)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("GET %s code = %v; want %v", path, rec.Code, http.StatusOK)
		}
		var subjects []catalog.Subject
		if err := json.Unmarshal(rec.Body.Bytes(), &subjects); err != nil {
			t.Fatalf("json.Unmarshal(): %v", err)
		}
		return subjects
	}

	// prime the class-scoped listing
	if subs := listSubjects("/v1/subjects?class_id=" + cls.ID); len(subs) != 1 {
		t.Fatalf("subjects = %d; want 1", len(subs))
	}

	req, rec := newAuthRequest(http.MethodPost, "/v1/subjects", token, marchallObj(t, catalog.NewSubject{ClassID: cls.ID, Name: "Civics"}))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST /v1/subjects code = %v; want %v", rec.Code, http.StatusCreated)
	}
	if subs := listSubjects("/v1/subjects?class_id=" + cls.ID); len(subs) != 2 {
		t.Errorf("subjects after create = %d; want 2 (stale cache entry served)", len(subs))
	}

	// prime the nested class view, then create a chapter under the subject
	if subs := listSubjects("/v1/classes/" + cls.ID + "/subjects"); len(subs[0].Chapters) != 0 {
		t.Fatalf("chapters = %d; want 0", len(subs[0].Chapters))
	}
	req, rec = newAuthRequest(http.MethodPost, "/v1/chapters", token, marchallObj(t, catalog.NewChapter{SubjectID: first.ID, Name: "Maps", Number: 1}))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST /v1/chapters code = %v; want %v", rec.Code, http.StatusCreated)
	}
	subs := listSubjects("/v1/classes/" + cls.ID + "/subjects")
	if len(subs[0].Chapters) != 1 {
		t.Errorf("chapters after create = %d; want 1 (stale cache entry served)", len(subs[0].Chapters))
	}
}

func Test_catalogApi_categoryCRUD(t *testing.T) {
	cache.Flush()
	admin := testutil.CreateUser(t, usrRepo, "Tag Admin", "tagadmin", "tagadmin@test.cd", "LePassword", user.AllRoles, true)
	student := testutil.CreateUser(t, usrRepo, "Tag Student", "tagstudent", "tagstudent@test.cd", "LePassword", []string{user.RoleStudent}, true)
	adminToken := getToken(t, admin)
	studentToken := getToken(t, student)

	listCategories := func(token string) []catalog.Category {
		req, rec := newAuthRequest(http.MethodGet, "/v1/categories", token)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("GET /v1/categories code = %v; want %v", rec.Code, http.StatusOK)
		}
		var categories []catalog.Category
		if err := json.Unmarshal(rec.Body.Bytes(), &categories); err != nil {
			t.Fatalf("json.Unmarshal(): %v", err)
		}
		return categories
	}

	// anyone authenticated can browse; only admins write
	listCategories(studentToken)
	req, rec := newAuthRequest(http.MethodPost, "/v1/categories", studentToken,
		marchallObj(t, catalog.NewCategory{Name: "Sciences", ImageURL: "https://img.test.cd/sciences.png"}))
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"})}, rec)

	req, rec = newAuthRequest(http.MethodPost, "/v1/categories", adminToken,
		marchallObj(t, catalog.NewCategory{Name: "Sciences", ImageURL: "https://img.test.cd/sciences.png"}))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST /v1/categories code = %v; want %v; body %s", rec.Code, http.StatusCreated, rec.Body.String())
	}
	var cat catalog.Category
	if err := json.Unmarshal(rec.Body.Bytes(), &cat); err != nil {
		t.Fatalf("json.Unmarshal(): %v", err)
	}
	if cat.Status != catalog.CategoryStatusActive {
		t.Errorf("status = %q; want %q", cat.Status, catalog.CategoryStatusActive)
	}

	// names are unique
	req, rec = newAuthRequest(http.MethodPost, "/v1/categories", adminToken,
		marchallObj(t, catalog.NewCategory{Name: "Sciences", ImageURL: "https://img.test.cd/dup.png"}))
	app.ServeHTTP(rec, req)
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusBadRequest,
		wantData: marchallObj(t, map[string]string{"name": "a category with this name already exists"}),
	}, rec)

	// the listing entry was invalidated by the create
	found := false
	for _, c := range listCategories(studentToken) {
		if c.ID == cat.ID {
			found = true
		}
	}
	if !found {
		t.Error("expected the new category in the listing")
	}

	// update
	req, rec = newAuthRequest(http.MethodPut, "/v1/categories/"+cat.ID, adminToken,
		marchallObj(t, catalog.UpdateCategory{Status: catalog.CategoryStatusInactive}))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("PUT /v1/categories/:id code = %v; want %v; body %s", rec.Code, http.StatusOK, rec.Body.String())
	}

	req, rec = newAuthRequest(http.MethodGet, "/v1/categories/"+cat.ID, adminToken)
	app.ServeHTTP(rec, req)
	var updated catalog.Category
	if err := json.Unmarshal(rec.Body.Bytes(), &updated); err != nil {
		t.Fatalf("json.Unmarshal(): %v", err)
	}
	if updated.Status != catalog.CategoryStatusInactive {
		t.Errorf("status = %q; want %q", updated.Status, catalog.CategoryStatusInactive)
	}

	// delete
	req, rec = newAuthRequest(http.MethodDelete, "/v1/categories/"+cat.ID, adminToken)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("DELETE /v1/categories/:id code = %v; want %v", rec.Code, http.StatusNoContent)
	}
	req, rec = newAuthRequest(http.MethodGet, "/v1/categories/"+cat.ID, adminToken)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("GET deleted category code = %v; want %v", rec.Code, http.StatusNotFound)
	}
}

func Test_catalogApi_subjectsAndChapters(t *testing.T) {
	cache.Flush()
	admin := testutil.CreateUser(t, usrRepo, "Subj Admin", "subjadmin", "subjadmin@test.cd", "LePassword", user.AllRoles, true)
	token := getToken(t, admin)

	cls := testutil.CreateClass(t, catRepo, "Form 3", "B")

	req, rec := newAuthRequest(http.MethodPost, "/v1/subjects", token, marchallObj(t, catalog.NewSubject{ClassID: cls.ID, Name: "Biology"}))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST /v1/subjects code = %v; want %v", rec.Code, http.StatusCreated)
	}
	var sub catalog.Subject
	if err := json.Unmarshal(rec.Body.Bytes(), &sub); err != nil {
		t.Fatalf("json.Unmarshal(): %v", err)
	}

	req, rec = newAuthRequest(http.MethodPost, "/v1/chapters", token, marchallObj(t, catalog.NewChapter{SubjectID: sub.ID, Name: "Cells", Number: 1}))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST /v1/chapters code = %v; want %v", rec.Code, http.StatusCreated)
	}
	var chap catalog.Chapter
	if err := json.Unmarshal(rec.Body.Bytes(), &chap); err != nil {
		t.Fatalf("json.Unmarshal(): %v", err)
	}

	// the class's subjects come back with chapters preloaded
	req, rec = newAuthRequest(http.MethodGet, "/v1/classes/"+cls.ID+"/subjects", token)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /v1/classes/:id/subjects code = %v; want %v", rec.Code, http.StatusOK)
	}
	var subjects []catalog.Subject
	if err := json.Unmarshal(rec.Body.Bytes(), &subjects); err != nil {
		t.Fatalf("json.Unmarshal(): %v", err)
	}
	if len(subjects) != 1 || subjects[0].ID != sub.ID {
		t.Fatalf("subjects = %+v", subjects)
	}
	if len(subjects[0].Chapters) != 1 || subjects[0].Chapters[0].ID != chap.ID {
		t.Errorf("chapters = %+v", subjects[0].Chapters)
	}

	// creating a subject under an unknown class is a 404
	req, rec = newAuthRequest(http.MethodPost, "/v1/subjects", token, marchallObj(t, catalog.NewSubject{ClassID: "00000000-0000-4000-8000-000000000000", Name: "Ghost"}))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("POST /v1/subjects (unknown class) code = %v; want %v", rec.Code, http.StatusNotFound)
	}
}
