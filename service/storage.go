package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"loandesk/domain"
	"loandesk/repository"
)

// storeCtx bounds every external-store call so a stalled upstream surfaces
// as StorageUnavailable instead of hanging the request.
func storeCtx(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		timeout = defaultStoreTime
	}
	return context.WithTimeout(ctx, timeout)
}

// fetchJSON downloads and decodes a document. Absence is reported as
// repository.ErrNotFound; transport failures come back as storage errors;
// an undecodable document is a validation failure at the storage boundary.
func fetchJSON(ctx context.Context, store repository.DocumentStore, timeout time.Duration, path string, dest any) error {
	sctx, cancel := storeCtx(ctx, timeout)
	defer cancel()

	data, err := store.Download(sctx, path)
	if errors.Is(err, repository.ErrNotFound) {
		return err
	}
	if err != nil {
		return domain.NewStorage(fmt.Sprintf("download %s", path), err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return domain.NewValidation("document %s is malformed: %v", path, err)
	}
	return nil
}

func putJSON(ctx context.Context, store repository.DocumentStore, timeout time.Duration, path string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return domain.NewValidation("encode %s: %v", path, err)
	}

	sctx, cancel := storeCtx(ctx, timeout)
	defer cancel()

	if err := store.Upload(sctx, path, data, jsonContentType); err != nil {
		return domain.NewStorage(fmt.Sprintf("upload %s", path), err)
	}
	return nil
}

func validateCID(cid string) error {
	if cid == "" {
		return domain.NewValidation("client id is required")
	}
	if len(cid) > MaxCIDLength {
		return domain.NewValidation("client id exceeds %d characters", MaxCIDLength)
	}
	return nil
}
