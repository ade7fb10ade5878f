package files

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/studyshare/internal/category"
	"github.com/dmitrijs2005/studyshare/internal/server/models"
)

const fileColumns = `id, name, path, class_code, user_id, school_name, public_url, course_type, rating, upload_status, created_at`

// Scope selects files visible to one school. Empty optional fields are not
// applied.
type Scope struct {
	School            string
	Category          category.Category
	NameContains      string
	ClassCodeContains string
}

// BuildSearchQuery renders scope into a parameterized SELECT. The school
// equality is always present, completed rows only, newest first.
func BuildSearchQuery(scope Scope) (string, []any) {
	conditions := []string{
		fmt.Sprintf("upload_status = '%s'", models.UploadCompleted),
		"school_name = $1",
	}
	args := []any{scope.School}

	add := func(cond string, arg any) {
		args = append(args, arg)
		conditions = append(conditions, fmt.Sprintf(cond, len(args)))
	}

	if scope.Category != "" {
		add("course_type = $%d", string(scope.Category))
	}
	if scope.NameContains != "" {
		add(`name ILIKE $%d ESCAPE '\'`, containsPattern(scope.NameContains))
	}
	if scope.ClassCodeContains != "" {
		add(`class_code ILIKE $%d ESCAPE '\'`, containsPattern(scope.ClassCodeContains))
	}

	query := "SELECT " + fileColumns + " FROM files WHERE " +
		strings.Join(conditions, " AND ") +
		" ORDER BY created_at DESC"

	return query, args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern turns user input into a literal-substring ILIKE pattern.
func containsPattern(term string) string {
	return "%" + likeEscaper.Replace(term) + "%"
}
