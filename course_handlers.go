package main

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type CourseDTO struct {
	ID        uint   `json:"id"`
	ShortName string `json:"shortName"`
	FullName  string `json:"fullName"`
}

type CategoryDTO struct {
	ID        uint               `json:"id"`
	Name      string             `json:"name"`
	Wildcards []WildcardSummary  `json:"wildcards"`
	SampleRow map[string]float64 `json:"sampleRow"` // wildcard name -> first row value
}

type ContextCategoriesDTO struct {
	ContextID  uint          `json:"contextId"`
	CMID       uint          `json:"cmid,omitempty"`
	Categories []CategoryDTO `json:"categories"`
}

// ListCourses returns the courses where the user may view datasets.
func ListCourses(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid, ok := currentUserID(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "no user"})
			return
		}

		var courses []Course
		if err := db.Order("short_name").Find(&courses).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db"})
			return
		}

		out := make([]CourseDTO, 0, len(courses))
		for _, course := range courses {
			allowed, err := HasCapability(db, uid, course.ID, CapView)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "db"})
				return
			}
			if !allowed {
				continue
			}
			out = append(out, CourseDTO{ID: course.ID, ShortName: course.ShortName, FullName: course.FullName})
		}
		c.JSON(http.StatusOK, out)
	}
}

// courseGuard resolves :courseid and checks the capability there.
func courseGuard(db *gorm.DB, c *gin.Context, capability string) (uint, uint, bool) {
	id64, err := strconv.ParseUint(c.Param("courseid"), 10, 32)
	if err != nil || id64 == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad course id"})
		return 0, 0, false
	}
	courseID := uint(id64)

	var course Course
	if err := db.First(&course, courseID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "course not found"})
		return 0, 0, false
	}

	uid, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "no user"})
		return 0, 0, false
	}
	allowed, err := HasCapability(db, uid, courseID, capability)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db"})
		return 0, 0, false
	}
	if !allowed {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return 0, 0, false
	}
	return courseID, uid, true
}

// ListCourseCategories returns every category in the course's contexts with
// its wildcards and a one-row value sample, grouped per context.
func ListCourseCategories(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		courseID, _, ok := courseGuard(db, c, CapView)
		if !ok {
			return
		}

		var contexts []Context
		if err := db.Where("course_id = ?", courseID).Order("cm_id").Find(&contexts).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db"})
			return
		}

		out := make([]ContextCategoriesDTO, 0, len(contexts))
		for _, ctx := range contexts {
			var cats []Category
			if err := db.Where("context_id = ?", ctx.ID).Order("name").Find(&cats).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "db"})
				return
			}

			dto := ContextCategoriesDTO{ContextID: ctx.ID, CMID: ctx.CMID}
			for _, cat := range cats {
				wildcards, err := GetWildcards(db, cat.ID, 1)
				if err != nil {
					c.JSON(http.StatusInternalServerError, gin.H{"error": "db"})
					return
				}
				sample := map[string]float64{}
				for _, wc := range wildcards {
					if len(wc.Values) > 0 {
						sample[wc.Name] = wc.Values[0]
					}
				}
				dto.Categories = append(dto.Categories, CategoryDTO{
					ID:        cat.ID,
					Name:      cat.Name,
					Wildcards: wildcards,
					SampleRow: sample,
				})
			}
			out = append(out, dto)
		}

		c.JSON(http.StatusOK, gin.H{"courseId": courseID, "contexts": out})
	}
}

// GetLastCategory returns the category the user last worked on in the
// course, remembered by the editor pages.
func GetLastCategory(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		courseID, uid, ok := courseGuard(db, c, CapView)
		if !ok {
			return
		}

		var pref CategoryPref
		err := db.Where("user_id = ? AND course_id = ?", uid, courseID).First(&pref).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusOK, gin.H{"courseId": courseID, "categoryId": nil})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "db"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"courseId": courseID, "categoryId": pref.CategoryID})
	}
}
