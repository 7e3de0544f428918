package main

import (
	"errors"
	"testing"
)

func TestHasCapability(t *testing.T) {
	db := newTestDB(t)
	course := Course{ShortName: "c1", FullName: "Course 1"}
	if err := db.Create(&course).Error; err != nil {
		t.Fatalf("create course: %v", err)
	}
	teacher := User{PublicID: "t"}
	viewer := User{PublicID: "v"}
	stranger := User{PublicID: "s"}
	db.Create(&teacher)
	db.Create(&viewer)
	db.Create(&stranger)
	db.Create(&Enrolment{UserID: teacher.ID, CourseID: course.ID, Role: "editingteacher"})
	db.Create(&Enrolment{UserID: viewer.ID, CourseID: course.ID, Role: "teacher"})

	tests := []struct {
		name       string
		userID     uint
		capability string
		want       bool
	}{
		{"editingteacher edits", teacher.ID, CapEdit, true},
		{"editingteacher imports", teacher.ID, CapImport, true},
		{"teacher views", viewer.ID, CapView, true},
		{"teacher exports", viewer.ID, CapExport, true},
		{"teacher cannot edit", viewer.ID, CapEdit, false},
		{"teacher cannot import", viewer.ID, CapImport, false},
		{"unenrolled has nothing", stranger.ID, CapView, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := HasCapability(db, tt.userID, course.ID, tt.capability)
			if err != nil {
				t.Fatalf("HasCapability: %v", err)
			}
			if got != tt.want {
				t.Fatalf("HasCapability = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCategoryContext(t *testing.T) {
	db := newTestDB(t)
	catID := mkCategory(t, db, "c1")

	cat, ctx, err := CategoryContext(db, catID)
	if err != nil {
		t.Fatalf("CategoryContext: %v", err)
	}
	if cat.ID != catID || ctx.ID != cat.ContextID {
		t.Fatalf("resolved cat=%+v ctx=%+v", cat, ctx)
	}

	if _, _, err := CategoryContext(db, 99999); !errors.Is(err, ErrCategoryNotFound) {
		t.Fatalf("err = %v, want ErrCategoryNotFound", err)
	}
}

func TestAssertOwnedByCategory(t *testing.T) {
	db := newTestDB(t)
	mine := mkCategory(t, db, "mine")
	other := mkCategory(t, db, "other")
	myWC := mkWildcard(t, db, mine, "A")
	theirWC := mkWildcard(t, db, other, "X")
	myItem := mkItem(t, db, myWC, 1, 1)
	theirItem := mkItem(t, db, theirWC, 1, 2)

	tests := []struct {
		name   string
		kind   string
		ids    []uint
		cat    uint
		wantOK bool
	}{
		{"own wildcard", KindWildcard, []uint{myWC}, mine, true},
		{"foreign wildcard", KindWildcard, []uint{theirWC}, mine, false},
		{"mixed wildcards", KindWildcard, []uint{myWC, theirWC}, mine, false},
		{"missing wildcard", KindWildcard, []uint{99999}, mine, false},
		{"own item", KindItem, []uint{myItem}, mine, true},
		{"foreign item", KindItem, []uint{theirItem}, mine, false},
		{"missing item", KindItem, []uint{99999}, mine, false},
		{"no ids", KindWildcard, nil, mine, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := AssertOwnedByCategory(db, tt.kind, tt.ids, tt.cat)
			if tt.wantOK {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			var oe *OwnershipError
			if !errors.As(err, &oe) {
				t.Fatalf("err = %v, want OwnershipError", err)
			}
			if oe.Kind != tt.kind || oe.CategoryID != tt.cat {
				t.Fatalf("error = %+v", oe)
			}
		})
	}
}
