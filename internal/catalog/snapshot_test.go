package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matineeapp/matinee-server/internal/archive"
	"github.com/matineeapp/matinee-server/internal/enrich"
)

func testItem(id, title string, runtime int, genres ...string) archive.Item {
	if len(genres) == 0 {
		genres = []string{"uncategorized"}
	}
	return archive.Item{
		Identifier: id,
		Title:      title,
		Runtime:    runtime,
		Genres:     genres,
	}
}

func posterMatch(id int, rating float64) *enrich.Match {
	return &enrich.Match{
		ExternalID: id,
		Title:      "matched",
		PosterRef:  "/poster.jpg",
		Rating:     rating,
	}
}

func TestSnapshot_ReplaceBumpsEpochAndClearsFacts(t *testing.T) {
	s := NewSnapshot()
	assert.Equal(t, uint64(0), s.Epoch())

	epoch := s.Replace([]archive.Item{testItem("a", "A", 90)}, 1)
	assert.Equal(t, uint64(1), epoch)

	require.True(t, s.ReportMatch(epoch, "a", posterMatch(1, 7.0)))

	epoch = s.Replace([]archive.Item{testItem("a", "A", 90)}, 1)
	assert.Equal(t, uint64(2), epoch)

	film, ok := s.Film("a")
	require.True(t, ok)
	assert.False(t, film.MatchReported)
	assert.Nil(t, film.Match)
	assert.Equal(t, ImageUnknown, film.ImageStatus)
}

func TestSnapshot_ReportMatch_OncePerEpoch(t *testing.T) {
	s := NewSnapshot()
	epoch := s.Replace([]archive.Item{testItem("a", "A", 90)}, 1)

	first := posterMatch(1, 7.0)
	require.True(t, s.ReportMatch(epoch, "a", first))
	assert.False(t, s.ReportMatch(epoch, "a", posterMatch(2, 9.0)))

	film, ok := s.Film("a")
	require.True(t, ok)
	require.NotNil(t, film.Match)
	assert.Equal(t, 1, film.Match.ExternalID)
}

func TestSnapshot_ReportMatch_StaleEpochDropped(t *testing.T) {
	s := NewSnapshot()
	stale := s.Replace([]archive.Item{testItem("a", "A", 90)}, 1)
	s.Replace([]archive.Item{testItem("a", "A", 90)}, 1)

	assert.False(t, s.ReportMatch(stale, "a", posterMatch(1, 7.0)))

	film, _ := s.Film("a")
	assert.False(t, film.MatchReported)
}

func TestSnapshot_ReportMatch_UnknownFilmDropped(t *testing.T) {
	s := NewSnapshot()
	epoch := s.Replace([]archive.Item{testItem("a", "A", 90)}, 1)

	assert.False(t, s.ReportMatch(epoch, "gone", posterMatch(1, 7.0)))
}

func TestSnapshot_ReportMatch_PosterSettlesImage(t *testing.T) {
	s := NewSnapshot()
	epoch := s.Replace([]archive.Item{testItem("a", "A", 90)}, 1)

	require.True(t, s.ReportMatch(epoch, "a", posterMatch(1, 7.0)))

	film, _ := s.Film("a")
	assert.Equal(t, ImageAvailable, film.ImageStatus)

	// The probe can't flip a settled status.
	assert.False(t, s.ReportImageStatus(epoch, "a", false))
	film, _ = s.Film("a")
	assert.Equal(t, ImageAvailable, film.ImageStatus)
}

func TestSnapshot_PlaceholderColorTracksImageStatus(t *testing.T) {
	s := NewSnapshot()
	epoch := s.Replace([]archive.Item{testItem("a", "Nosferatu", 94)}, 1)

	film, _ := s.Film("a")
	require.NotEmpty(t, film.PlaceholderColor)
	assert.Regexp(t, `^#[0-9A-F]{6}$`, film.PlaceholderColor)

	// Stable across reads while no poster is displayable.
	again, _ := s.Film("a")
	assert.Equal(t, film.PlaceholderColor, again.PlaceholderColor)

	require.True(t, s.ReportImageStatus(epoch, "a", false))
	film, _ = s.Film("a")
	assert.NotEmpty(t, film.PlaceholderColor)

	epoch = s.Replace([]archive.Item{testItem("a", "Nosferatu", 94)}, 1)
	require.True(t, s.ReportMatch(epoch, "a", posterMatch(1, 7.0)))
	film, _ = s.Film("a")
	assert.Empty(t, film.PlaceholderColor)
}

func TestSnapshot_ReportMatch_TombstoneLeavesImageToProbe(t *testing.T) {
	s := NewSnapshot()
	epoch := s.Replace([]archive.Item{testItem("a", "A", 90)}, 1)

	require.True(t, s.ReportMatch(epoch, "a", nil))

	film, _ := s.Film("a")
	assert.True(t, film.MatchReported)
	assert.Nil(t, film.Match)
	assert.Equal(t, ImageUnknown, film.ImageStatus)

	require.True(t, s.ReportImageStatus(epoch, "a", false))
	film, _ = s.Film("a")
	assert.Equal(t, ImageMissing, film.ImageStatus)
}

func TestSnapshot_ReportMatch_PosterlessMatchLeavesImageToProbe(t *testing.T) {
	s := NewSnapshot()
	epoch := s.Replace([]archive.Item{testItem("a", "A", 90)}, 1)

	match := &enrich.Match{ExternalID: 3, Title: "matched", Rating: 6.2}
	require.True(t, s.ReportMatch(epoch, "a", match))

	film, _ := s.Film("a")
	require.NotNil(t, film.Match)
	assert.Equal(t, ImageUnknown, film.ImageStatus)

	require.True(t, s.ReportImageStatus(epoch, "a", true))
	film, _ = s.Film("a")
	assert.Equal(t, ImageAvailable, film.ImageStatus)
}

func TestSnapshot_ReportImageStatus_AtMostOnce(t *testing.T) {
	s := NewSnapshot()
	epoch := s.Replace([]archive.Item{testItem("a", "A", 90)}, 1)

	require.True(t, s.ReportImageStatus(epoch, "a", false))
	assert.False(t, s.ReportImageStatus(epoch, "a", true))

	film, _ := s.Film("a")
	assert.Equal(t, ImageMissing, film.ImageStatus)
}

func TestSnapshot_ReportImageStatus_StaleEpochDropped(t *testing.T) {
	s := NewSnapshot()
	stale := s.Replace([]archive.Item{testItem("a", "A", 90)}, 1)
	s.Replace([]archive.Item{testItem("a", "A", 90)}, 1)

	assert.False(t, s.ReportImageStatus(stale, "a", false))
}

func TestSnapshot_Film(t *testing.T) {
	s := NewSnapshot()
	epoch := s.Replace([]archive.Item{testItem("a", "Nosferatu - 1922", 94)}, 1)

	_, ok := s.Film("missing")
	assert.False(t, ok)

	require.True(t, s.ReportMatch(epoch, "a", posterMatch(10, 7.9)))

	film, ok := s.Film("a")
	require.True(t, ok)
	assert.Equal(t, "Nosferatu - 1922", film.Title)
	assert.Equal(t, 94, film.Runtime)
	require.NotNil(t, film.Match)
	assert.Equal(t, 10, film.Match.ExternalID)
	assert.Equal(t, 7.9, film.Match.Rating)
}

func TestSnapshot_ItemsReturnsCopy(t *testing.T) {
	s := NewSnapshot()
	s.Replace([]archive.Item{testItem("a", "A", 90)}, 1)

	items := s.Items()
	items[0].Title = "mutated"

	film, _ := s.Film("a")
	assert.Equal(t, "A", film.Title)
}

func TestSnapshot_TotalAndLen(t *testing.T) {
	s := NewSnapshot()
	s.Replace([]archive.Item{testItem("a", "A", 90), testItem("b", "B", 12)}, 412)

	assert.Equal(t, 2, s.Len())
	assert.Equal(t, 412, s.Total())
}
