package directory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"business-directory/internal/common/validation"
	"business-directory/internal/models"
)

type nameLookup interface {
	FindIDByName(ctx context.Context, name string) (int64, bool, error)
}

// AutoChecker runs the automatic pre-moderation checks on a company.
type AutoChecker struct {
	names       nameLookup
	bannedWords []string
}

func NewAutoChecker(names nameLookup, bannedWords []string) *AutoChecker {
	words := make([]string, 0, len(bannedWords))
	for _, w := range bannedWords {
		if w = strings.ToLower(strings.TrimSpace(w)); w != "" {
			words = append(words, w)
		}
	}
	return &AutoChecker{names: names, bannedWords: words}
}

// Check never fails the write on its own; the result is stored with the moderation record.
func (a *AutoChecker) Check(ctx context.Context, e models.BusinessEntity) (models.AutoCheckResult, error) {
	res := models.AutoCheckResult{
		HasRequiredFields: true,
		WebsiteValid:      true,
		BannedWordsClean:  true,
		NotDuplicate:      true,
	}

	for field, value := range map[string]string{"name": e.Name, "description": e.Description, "phone": e.Phone, "email": e.Email} {
		if strings.TrimSpace(value) == "" {
			res.HasRequiredFields = false
			res.Issues = append(res.Issues, "missing "+field)
		}
	}

	if e.Website != nil && *e.Website != "" && !validation.ValidateURL(*e.Website) {
		res.WebsiteValid = false
		res.Issues = append(res.Issues, "invalid website")
	}

	text := strings.ToLower(e.Name + " " + e.Description)
	for _, w := range a.bannedWords {
		if strings.Contains(text, w) {
			res.BannedWordsClean = false
			res.Issues = append(res.Issues, fmt.Sprintf("banned word %q", w))
		}
	}

	if a.names != nil && strings.TrimSpace(e.Name) != "" {
		id, found, err := a.names.FindIDByName(ctx, e.Name)
		if err != nil {
			return res, fmt.Errorf("duplicate check: %w", err)
		}
		if found && id != e.ID {
			res.NotDuplicate = false
			res.Issues = append(res.Issues, fmt.Sprintf("duplicate of company %d", id))
		}
	}

	// map iteration order is random
	sort.Strings(res.Issues)
	return res, nil
}
