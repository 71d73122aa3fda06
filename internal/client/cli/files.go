package cli

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/dmitrijs2005/filevault/internal/client/client"
	"github.com/dmitrijs2005/filevault/internal/client/config"
	"github.com/dmitrijs2005/filevault/internal/client/models"
	"github.com/dmitrijs2005/filevault/internal/client/services"
)

const (
	dateLayout     = "Jan 2, 2006"
	dateTimeLayout = "Jan 2, 2006 15:04"
	deletePrompt   = "Delete this file? This cannot be undone. [y/N]"
)

func (a *App) List(ctx context.Context) error {
	listing := a.files.List(ctx)
	if listing.Failed() {
		return fmt.Errorf("could not load files: %w", listing.Err)
	}
	if len(listing.Files) == 0 {
		fmt.Fprintln(a.out, "No files yet. Use 'upload <path>' to add one.")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tTYPE\tSIZE\tUPLOADED")
	for _, f := range listing.Files {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", f.ID, f.Name, f.MIMEType, humanSize(f.SizeOriginal), f.CreatedAt.Local().Format(dateLayout))
	}
	return tw.Flush()
}

// detectMIME guesses the type from the extension; the server sniffs the
// content when this comes back empty.
func detectMIME(path string) string {
	t := mime.TypeByExtension(filepath.Ext(path))
	if t == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(t)
	if err != nil {
		return ""
	}
	return mt
}

func (a *App) Upload(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}

	fmt.Fprintln(a.out, config.UploadPolicyHint)
	task, err := a.uploads.Upload(ctx, &models.LocalFile{
		Name:     info.Name(),
		MIMEType: detectMIME(path),
		Size:     info.Size(),
		Content:  f,
	})
	if err != nil {
		return err
	}

	for p := range task.Progress() {
		fmt.Fprintf(a.out, "\rUploading %s: %3d%%", info.Name(), p.Percent())
	}
	fmt.Fprintln(a.out)

	rec, mut, err := task.Wait(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Uploaded %s (id %s)\n", rec.Name, rec.ID)
	if mut.Refetch {
		fmt.Fprintln(a.out, "The file list could not be refreshed; run 'list' to reload it.")
	}
	return nil
}

func (a *App) Delete(ctx context.Context, id string) error {
	ok, err := confirm(a.reader, deletePrompt, a.out)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(a.out, "Cancelled.")
		return nil
	}

	mut, err := a.files.Remove(ctx, id)
	if err != nil {
		if mut.Refetch {
			a.files.List(ctx)
		}
		if errors.Is(err, client.ErrNotFound) {
			return fmt.Errorf("file %s not found", id)
		}
		return err
	}
	fmt.Fprintln(a.out, "Deleted.")
	return nil
}

func (a *App) Share(_ context.Context, id string) error {
	if !a.isLoggedIn() {
		return client.ErrUnauthenticated
	}
	fmt.Fprintln(a.out, a.share.ShareURL(id))
	return nil
}

// Open shows what a visitor of a share link sees. It needs no session.
func (a *App) Open(ctx context.Context, link string) error {
	id, err := a.share.ExtractID(link)
	if err != nil {
		return err
	}
	sf, err := a.share.Resolve(ctx, id)
	if err != nil {
		if errors.Is(err, services.ErrFileUnavailable) {
			fmt.Fprintln(a.out, "File not found or no longer available.")
			return nil
		}
		return err
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Name:\t%s\n", sf.Record.Name)
	fmt.Fprintf(tw, "Size:\t%s\n", humanSize(sf.Record.SizeOriginal))
	fmt.Fprintf(tw, "Uploaded:\t%s\n", sf.Record.CreatedAt.Local().Format(dateLayout))
	fmt.Fprintf(tw, "Download:\t%s\n", sf.DownloadURL)
	if sf.PreviewURL != "" {
		fmt.Fprintf(tw, "Preview:\t%s\n", sf.PreviewURL)
	}
	return tw.Flush()
}

func humanSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}
