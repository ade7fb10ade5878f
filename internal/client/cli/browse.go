package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/studyshare/internal/category"
	"github.com/dmitrijs2005/studyshare/internal/client/listing"
	"github.com/dmitrijs2005/studyshare/internal/client/models"
	"github.com/dmitrijs2005/studyshare/internal/netx"
)

func (a *App) Categories(ctx context.Context) error {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	cats, err := a.catalogService.Categories(ctx)
	if err != nil {
		return a.report(ctx, "Categories", err)
	}
	for _, c := range cats {
		fmt.Fprintf(a.out, "  %-18s %s\n", c.ID, c.Label)
	}
	return nil
}

func (a *App) SelectCategory(ctx context.Context, arg string) error {
	c, err := category.Parse(arg)
	if err != nil {
		a.println("Unknown category:", arg, "(type 'categories' to list them)")
		return err
	}
	return a.show(ctx, a.browser.SelectCategory(ctx, c))
}

// ClearCategory only resets the selection; use refresh to list again.
func (a *App) ClearCategory(ctx context.Context) error {
	a.browser.ClearCategory()
	a.println("Showing all categories. Type 'refresh' to reload.")
	return nil
}

func (a *App) Search(ctx context.Context, term string) error {
	if strings.TrimSpace(term) == "" {
		a.println("Usage: search <name>")
		return nil
	}
	return a.show(ctx, a.browser.Search(ctx, term))
}

func (a *App) Filter(ctx context.Context) error {
	classCode, err := getSimpleText(a.reader, "Class code contains (empty to skip)", a.out)
	if err != nil {
		return err
	}
	name, err := getSimpleText(a.reader, "Name contains (empty to skip)", a.out)
	if err != nil {
		return err
	}
	return a.show(ctx, a.browser.ApplyFilter(ctx, classCode, name))
}

func (a *App) Refresh(ctx context.Context) error {
	return a.show(ctx, a.browser.Refresh(ctx))
}

// Open prints the public URL of the n-th listed file, counting from 1.
func (a *App) Open(ctx context.Context, arg string) error {
	f := a.card(arg)
	if f == nil {
		a.println("Usage: open <number from the list>")
		return nil
	}
	a.println(f.PublicURL)
	return nil
}

// Download saves card n to dest, or to the file's own name in the working
// directory when dest is empty.
func (a *App) Download(ctx context.Context, arg, dest string) error {
	f := a.card(arg)
	if f == nil {
		a.println("Usage: download <number from the list> [destination]")
		return nil
	}
	if dest == "" {
		dest = path.Base(f.Path)
		if f.Path == "" || dest == "/" || dest == "." {
			dest = f.ID
		}
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	saved, n, err := netx.Download(ctx, a.httpClient, f.PublicURL, dest)
	if err != nil {
		return a.report(ctx, "Download", err)
	}
	a.println(fmt.Sprintf("Saved %s (%d bytes)", saved, n))
	return nil
}

func (a *App) card(arg string) *models.File {
	files := a.browser.Snapshot().Files

	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 || n > len(files) {
		return nil
	}
	return files[n-1]
}

// show renders the listing after a fetch. A stale fetch was superseded and
// prints nothing.
func (a *App) show(ctx context.Context, fetchErr error) error {
	if errors.Is(fetchErr, listing.ErrStale) {
		return nil
	}
	if fetchErr != nil {
		return a.report(ctx, "Listing", fetchErr)
	}
	renderSnapshot(a.out, a.browser.Snapshot())
	return nil
}

func renderSnapshot(w io.Writer, s listing.Snapshot) {
	var scope []string
	if s.Category != "" {
		scope = append(scope, "category "+s.Category.Label())
	}
	if s.SearchTerm != "" {
		scope = append(scope, fmt.Sprintf("name %q", s.SearchTerm))
	}
	if s.ClassFilter != "" {
		scope = append(scope, fmt.Sprintf("class %q", s.ClassFilter))
	}
	if s.NameFilter != "" {
		scope = append(scope, fmt.Sprintf("name %q", s.NameFilter))
	}
	if len(scope) > 0 {
		fmt.Fprintf(w, "Files (%s):\n", strings.Join(scope, ", "))
	}

	if s.Err != nil {
		fmt.Fprintln(w, "Files could not be loaded:", s.Err)
		return
	}
	if len(s.Files) == 0 {
		fmt.Fprintln(w, "No files found.")
		return
	}

	for i, f := range s.Files {
		fmt.Fprintf(w, "[%d] %s\n", i+1, f.Name)
		fmt.Fprintf(w, "    Class: %s  Category: %s  School: %s\n", f.ClassCode, f.Category.Label(), f.SchoolName)
		if f.Rating != nil {
			fmt.Fprintf(w, "    Rating: %.1f\n", *f.Rating)
		}
		fmt.Fprintf(w, "    URL: %s\n", f.PublicURL)
	}
}
