package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCastList(t *testing.T) {
	assert.Empty(t, ContentItem{}.CastList())
	assert.NotNil(t, ContentItem{}.CastList())
	assert.Equal(t, []string{"Ana", "Bruno"}, ContentItem{CastNames: " Ana || Bruno | "}.CastList())
}

func TestCast_PhotoFallback(t *testing.T) {
	item := ContentItem{CastNames: "Ana|Bruno|Caio", CastPhotos: []string{"https://cdn/ana.jpg", ""}}
	assert.Equal(t, []CastMember{
		{Name: "Ana", Photo: "https://cdn/ana.jpg"},
		{Name: "Bruno", Photo: AvatarPlaceholder},
		{Name: "Caio", Photo: AvatarPlaceholder},
	}, item.Cast())
}

func TestRawRowID(t *testing.T) {
	assert.Equal(t, int64(12), RawRow{"id": float64(12)}.ID())
	assert.Equal(t, int64(0), RawRow{}.ID())
}

func TestCast_KeepsRawPositions(t *testing.T) {
	item := ContentItem{
		CastNames:  "Ana||Bruno",
		CastPhotos: []string{"https://cdn/ana.jpg", "https://cdn/vazio.jpg", "https://cdn/bruno.jpg"},
	}
	assert.Equal(t, []CastMember{
		{Name: "Ana", Photo: "https://cdn/ana.jpg"},
		{Name: "Bruno", Photo: "https://cdn/bruno.jpg"},
	}, item.Cast())
	assert.Empty(t, ContentItem{}.Cast())
}

func TestIsSeries(t *testing.T) {
	assert.True(t, ContentItem{Type: ContentSeries}.IsSeries())
	assert.True(t, ContentItem{Type: "Serie"}.IsSeries())
	assert.False(t, ContentItem{Type: ContentMovie}.IsSeries())
	assert.False(t, ContentItem{}.IsSeries())
}
