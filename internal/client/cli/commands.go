package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/sentinelchain/filevault/internal/client/cache"
	"github.com/sentinelchain/filevault/internal/filex"
)

func (a *App) upload(ctx context.Context, path string) error {
	plaintext, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	name := filepath.Base(path)
	file, rcp, err := a.coord.Upload(ctx, name, plaintext)
	if err != nil {
		return err
	}

	a.cacheEntry(ctx, file.ID, name, file.Owner, file.Size, file.ContentHandle, file.CreatedAt)

	fmt.Fprintf(a.out, "Uploaded %s as file %d (tx %s)\n", name, file.ID, rcp.TxID)
	return nil
}

func (a *App) download(ctx context.Context, idArg, destDir string) error {
	id, err := strconv.ParseInt(idArg, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid file id %q", idArg)
	}

	name, plaintext, err := a.coord.Download(ctx, id)
	if err != nil {
		return err
	}

	destDir, err = filex.EnsureDir(destDir)
	if err != nil {
		return err
	}

	dest := filepath.Join(destDir, filepath.Base(name))
	if err := os.WriteFile(dest, plaintext, 0o600); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Saved file %d to %s (%d bytes)\n", id, dest, len(plaintext))
	return nil
}

// list prints the caller's files, decrypting names on demand and refreshing
// the local cache as it goes.
func (a *App) list(ctx context.Context) error {
	ids, err := a.client.ListMine(ctx)
	if err != nil {
		return err
	}

	for _, id := range ids {
		if entry, err := a.cache.Get(ctx, id); err == nil {
			fmt.Fprintf(a.out, "%4d  %-30s %8d  %s\n", entry.ID, entry.Name, entry.Size, entry.Owner)
			continue
		}

		name, file, err := a.fetchName(ctx, id)
		if err != nil {
			fmt.Fprintf(a.out, "%4d  <unreadable: %v>\n", id, err)
			continue
		}
		fmt.Fprintf(a.out, "%4d  %-30s %8d  %s\n", id, name, file.Size, file.Owner)
	}
	return nil
}

// fetchName resolves the decrypted name of a file and caches the metadata.
func (a *App) fetchName(ctx context.Context, id int64) (string, *cacheView, error) {
	file, err := a.client.GetFile(ctx, id)
	if err != nil {
		return "", nil, err
	}

	name, _, err := a.coord.Download(ctx, id)
	if err != nil {
		return "", nil, err
	}

	a.cacheEntry(ctx, id, name, file.Owner, file.Size, file.ContentHandle, file.CreatedAt)
	return name, &cacheView{Size: file.Size, Owner: file.Owner}, nil
}

type cacheView struct {
	Size  int64
	Owner string
}

func (a *App) cacheEntry(ctx context.Context, id int64, name, owner string, size int64, handle string, createdAt time.Time) {
	_ = a.cache.Upsert(ctx, &cache.Entry{
		ID:            id,
		Name:          name,
		Owner:         owner,
		Size:          size,
		ContentHandle: handle,
		CreatedAt:     createdAt,
		CachedAt:      time.Now(),
	})
}

func (a *App) share(ctx context.Context, idArg, grantee string) error {
	id, err := strconv.ParseInt(idArg, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid file id %q", idArg)
	}

	rcp, err := a.coord.Share(ctx, id, grantee)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Shared file %d with %s (tx %s)\n", id, grantee, rcp.TxID)
	return nil
}

func (a *App) revoke(ctx context.Context, idArg, grantee string) error {
	id, err := strconv.ParseInt(idArg, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid file id %q", idArg)
	}

	rcp, err := a.client.Revoke(ctx, id, grantee)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Revoked %s on file %d (tx %s)\n", grantee, id, rcp.TxID)
	return nil
}

func (a *App) remove(ctx context.Context, idArg string) error {
	id, err := strconv.ParseInt(idArg, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid file id %q", idArg)
	}

	rcp, err := a.client.Delete(ctx, id)
	if err != nil {
		return err
	}

	_ = a.cache.Delete(ctx, id)

	fmt.Fprintf(a.out, "Deleted file %d (tx %s)\n", id, rcp.TxID)
	return nil
}

func (a *App) grants(ctx context.Context, idArg string) error {
	id, err := strconv.ParseInt(idArg, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid file id %q", idArg)
	}

	grants, err := a.client.ListGrants(ctx, id)
	if err != nil {
		return err
	}

	if len(grants) == 0 {
		fmt.Fprintf(a.out, "No grants for file %d\n", id)
		return nil
	}

	for _, g := range grants {
		status := "active"
		if g.Revoked {
			status = "revoked"
		}
		fmt.Fprintf(a.out, "%s  gen %d  %s  %s\n", g.Grantee, g.Sequence, status, g.GrantedAt.Format(time.RFC3339))
	}
	return nil
}
