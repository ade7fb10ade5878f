// Package category holds the fixed set of subject categories a file can be
// filed under.
package category

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/studyshare/internal/common"
)

// Category is a subject identifier such as "math" or "computerscience".
// The zero value means "no category".
type Category string

const (
	Math              Category = "math"
	Science           Category = "science"
	English           Category = "english"
	History           Category = "history"
	Geography         Category = "geography"
	Physics           Category = "physics"
	Chemistry         Category = "chemistry"
	Biology           Category = "biology"
	ComputerScience   Category = "computerscience"
	Art               Category = "art"
	Music             Category = "music"
	PhysicalEducation Category = "physicaleducation"
	ForeignLanguage   Category = "foreignlanguage"
)

// ordered as shown to users
var all = []Category{
	Math, Science, English, History, Geography, Physics, Chemistry,
	Biology, ComputerScience, Art, Music, PhysicalEducation, ForeignLanguage,
}

var labels = map[Category]string{
	Math:              "Math",
	Science:           "Science",
	English:           "English",
	History:           "History",
	Geography:         "Geography",
	Physics:           "Physics",
	Chemistry:         "Chemistry",
	Biology:           "Biology",
	ComputerScience:   "Computer Science",
	Art:               "Art",
	Music:             "Music",
	PhysicalEducation: "Physical Education",
	ForeignLanguage:   "Foreign Language",
}

// All returns every category in display order.
func All() []Category {
	out := make([]Category, len(all))
	copy(out, all)
	return out
}

func (c Category) Valid() bool {
	_, ok := labels[c]
	return ok
}

// Label is the human-readable name, or the raw value for unknown categories.
func (c Category) Label() string {
	if l, ok := labels[c]; ok {
		return l
	}
	return string(c)
}

func (c Category) String() string { return string(c) }

// Parse accepts a category identifier case-insensitively. Spaces are ignored
// so "Computer Science" parses as ComputerScience.
func Parse(s string) (Category, error) {
	c := Category(strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), " ", "")))
	if !c.Valid() {
		return "", fmt.Errorf("%w: %q", common.ErrInvalidCategory, s)
	}
	return c, nil
}
