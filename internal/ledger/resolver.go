package ledger

import (
	"context"
	"fmt"
)

// ResolveCategoryID maps a free-text category name to an existing category ID
// for the user. The lookup is exact and case-sensitive: no fuzzy matching, no
// auto-creation. A miss returns an empty ID so the caller can persist the
// transaction with the name alone.
func ResolveCategoryID(ctx context.Context, r Reader, userID, name string) (string, error) {
	if name == "" {
		return "", nil
	}
	cats, err := r.Categories(ctx, userID, "")
	if err != nil {
		return "", fmt.Errorf("ResolveCategoryID: list categories: %w", err)
	}
	for _, c := range cats {
		if c.Name == name {
			return c.ID, nil
		}
	}
	return "", nil
}
