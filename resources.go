package main

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// mentalHealthCategories are the categories seeded into mental_health_content.
var mentalHealthCategories = []string{"Meditation", "Stress", "Sleep"}

func (s *localStore) listHelplines(ctx context.Context) ([]helpline, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, number, description FROM helplines ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list helplines: %w", err)
	}
	defer rows.Close()

	out := []helpline{}
	for rows.Next() {
		var h helpline
		if err := rows.Scan(&h.ID, &h.Name, &h.Number, &h.Description); err != nil {
			return nil, fmt.Errorf("scan helpline: %w", err)
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

// listMentalHealthContent returns content for category, or everything when
// category is empty.
func (s *localStore) listMentalHealthContent(ctx context.Context, category string) ([]mentalHealthContent, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, title, type, category, content_data FROM mental_health_content
WHERE ? = '' OR category = ?
ORDER BY id`, category, category)
	if err != nil {
		return nil, fmt.Errorf("list mental health content: %w", err)
	}
	defer rows.Close()

	out := []mentalHealthContent{}
	for rows.Next() {
		var m mentalHealthContent
		if err := rows.Scan(&m.ID, &m.Title, &m.Type, &m.Category, &m.ContentData); err != nil {
			return nil, fmt.Errorf("scan mental health content: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// canonicalCategory matches category case-insensitively against the known set.
func canonicalCategory(category string) (string, bool) {
	for _, known := range mentalHealthCategories {
		if strings.EqualFold(known, category) {
			return known, true
		}
	}
	return "", false
}

/* ─── Handlers ───────────────────────────────────────────────────────── */

// getHelplines returns the crisis helpline list.
// GET /api/helplines.
func (h *Handler) getHelplines(c *gin.Context) {
	helplines, err := h.store.listHelplines(c)
	if err != nil {
		respondError(c, err, "failed to fetch helplines")
		return
	}
	c.JSON(http.StatusOK, helplines)
}

// getMentalHealthContent returns videos and tips, optionally for one category.
// GET /api/mental-health?category=Meditation|Stress|Sleep.
func (h *Handler) getMentalHealthContent(c *gin.Context) {
	category := strings.TrimSpace(c.Query("category"))
	if category != "" {
		known, ok := canonicalCategory(category)
		if !ok {
			apiError(c, http.StatusBadRequest, "category must be one of: "+strings.Join(mentalHealthCategories, ", "))
			return
		}
		category = known
	}
	content, err := h.store.listMentalHealthContent(c, category)
	if err != nil {
		respondError(c, err, "failed to fetch content")
		return
	}
	c.JSON(http.StatusOK, content)
}
