package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/studyshare/internal/category"
	"github.com/dmitrijs2005/studyshare/internal/client/services"
)

const uploadGuide = `Upload a study file.
  - Only share material you created or have the right to share.
  - The file will be visible to everyone at your school.
  - Pick the class code it belongs to (e.g. MATH201) and a subject category.`

func categoryIDs() string {
	all := category.All()
	ids := make([]string, len(all))
	for i, c := range all {
		ids[i] = c.String()
	}
	return strings.Join(ids, ", ")
}

// Upload shows the guide, asks for the file and its metadata and uploads
// it. The new file is put on top of the current listing.
func (a *App) Upload(ctx context.Context) error {
	a.println(uploadGuide)

	var in services.UploadInput
	prompts := []struct {
		text string
		dst  *string
	}{
		{"Path to file", &in.Path},
		{"Class code", &in.ClassCode},
		{fmt.Sprintf("Category (%s)", categoryIDs()), &in.Category},
		{"Display name", &in.DisplayName},
	}
	for _, p := range prompts {
		v, err := getSimpleText(a.reader, p.text, a.out)
		if err != nil {
			return err
		}
		*p.dst = v
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	f, err := a.catalogService.Upload(ctx, in)
	if err != nil {
		return a.report(ctx, "Upload", err)
	}

	a.browser.Prepend(f)
	a.logger.Info(ctx, "file uploaded", "id", f.ID, "path", f.Path)
	a.println("Uploaded:", f.Name)
	a.println(f.PublicURL)
	return nil
}
