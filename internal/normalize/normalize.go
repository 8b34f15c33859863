// Package normalize converts raw archive metadata into the shapes the
// catalog consumes: comparison-ready titles, whole-minute runtimes,
// release years, and canonical genre tags.
package normalize

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/matineeapp/matinee-server/internal/genre"
)

// Trailing year markers seen in scraped film titles: "(1963)", "[1927]",
// "- 1922". Only one marker is stripped, and only at the end of the title.
//
//nolint:gochecknoglobals // Static patterns compiled once
var (
	trailingWrappedYear = regexp.MustCompile(`\s*[([][12]\d{3}[)\]]\s*$`)
	trailingDashYear    = regexp.MustCompile(`\s*-\s*[12]\d{3}\s*$`)
	nonAlphanumeric     = regexp.MustCompile(`[^\p{L}\p{N}]+`)
	yearDigits          = regexp.MustCompile(`[12]\d{3}`)
)

// Title converts a free-text film title into a comparison-ready string.
// It strips a trailing year marker, replaces runs of non-alphanumeric
// characters with a single space, and trims the result. Case is
// preserved; callers that need case-insensitive keys lowercase it
// themselves.
//
//	"The Great Escape (1963)" -> "The Great Escape"
//	"Metropolis [1927]"       -> "Metropolis"
//	"Nosferatu - 1922"        -> "Nosferatu"
//	"2001: A Space Odyssey"   -> "2001 A Space Odyssey"
func Title(raw string) string {
	title, _ := TitleYear(raw)
	return title
}

// TitleYear is Title plus the year recovered from the stripped marker,
// or 0 when the title carries none. Useful as a fallback when the
// item's date metadata is missing.
func TitleYear(raw string) (string, int) {
	s := strings.TrimSpace(sanitizeString(raw))

	year := 0
	if loc := trailingWrappedYear.FindStringIndex(s); loc != nil {
		year = atoiYear(s[loc[0]:loc[1]])
		s = s[:loc[0]]
	} else if loc := trailingDashYear.FindStringIndex(s); loc != nil {
		year = atoiYear(s[loc[0]:loc[1]])
		s = s[:loc[0]]
	}

	s = nonAlphanumeric.ReplaceAllString(s, " ")
	return strings.TrimSpace(s), year
}

// Year extracts a plausible release year from raw date metadata.
// Handles full timestamps ("1963-01-01T00:00:00Z"), bare years
// ("1927"), and prose ("ca. 1922"). Returns 0 when no year is found.
func Year(raw string) int {
	return atoiYear(sanitizeString(raw))
}

func atoiYear(s string) int {
	match := yearDigits.FindString(s)
	if match == "" {
		return 0
	}
	year, err := strconv.Atoi(match)
	if err != nil {
		return 0
	}
	return year
}

// Runtime patterns for prose forms: "1 hr 32 min", "92 min", "92".
//
//nolint:gochecknoglobals // Static patterns compiled once
var (
	hourMinRuntime = regexp.MustCompile(`(\d+)\s*h(?:rs?|ours?)?\.?\s*(?:(\d+)\s*m(?:in(?:ute)?s?)?\.?)?`)
	minutesRuntime = regexp.MustCompile(`(\d+)\s*m(?:in(?:ute)?s?)?\.?`)
	bareNumber     = regexp.MustCompile(`^\d+$`)
)

// Runtime converts free-text runtime metadata into whole minutes,
// rounding to the nearest minute. Returns 0 when the text is
// unrecognizable (unknown runtime).
//
// Colon forms follow the archive convention: three components are
// H:MM:SS; two components are ambiguous, so a first component under 10
// reads as hours:minutes and anything else as minutes:seconds.
//
//	"1:32:00"     -> 92
//	"1:32"        -> 92
//	"45:30"       -> 46
//	"1 hr 32 min" -> 92
//	"92 min"      -> 92
func Runtime(raw string) int {
	s := strings.ToLower(strings.TrimSpace(sanitizeString(raw)))
	if s == "" {
		return 0
	}

	if strings.Contains(s, ":") {
		return colonRuntime(s)
	}

	if m := hourMinRuntime.FindStringSubmatch(s); m != nil {
		hours, _ := strconv.Atoi(m[1]) //nolint:errcheck // \d+ always parses
		minutes := 0
		if m[2] != "" {
			minutes, _ = strconv.Atoi(m[2]) //nolint:errcheck // \d+ always parses
		}
		return hours*60 + minutes
	}

	if m := minutesRuntime.FindStringSubmatch(s); m != nil {
		minutes, _ := strconv.Atoi(m[1]) //nolint:errcheck // \d+ always parses
		return minutes
	}

	if bareNumber.MatchString(s) {
		minutes, _ := strconv.Atoi(s) //nolint:errcheck // \d+ always parses
		return minutes
	}

	return 0
}

func colonRuntime(s string) int {
	parts := strings.Split(s, ":")
	nums := make([]int, 0, len(parts))
	for _, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return 0
		}
		nums = append(nums, n)
	}

	var seconds int
	switch len(nums) {
	case 3:
		seconds = nums[0]*3600 + nums[1]*60 + nums[2]
	case 2:
		if nums[0] < 10 {
			seconds = nums[0]*3600 + nums[1]*60
		} else {
			seconds = nums[0]*60 + nums[1]
		}
	default:
		return 0
	}

	return int(math.Round(float64(seconds) / 60))
}

// GenreTags converts a raw delimited genre string into canonical genre
// slugs. Unrecognized tokens are dropped; callers apply the
// "Uncategorized" sentinel when nothing survives.
//
//	"Sci-Fi; Horror"     -> ["science-fiction", "horror"]
//	"comedy / slapstick" -> ["comedy"]
func GenreTags(raw string) []string {
	raw = sanitizeString(raw)
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	tokens := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ';' || r == ',' || r == '/' || r == '&' || r == '|'
	})

	var slugs []string
	seen := make(map[string]bool)
	for _, token := range tokens {
		for _, slug := range genre.NormalizeToSlugs(token) {
			if seen[slug] {
				continue
			}
			seen[slug] = true
			slugs = append(slugs, slug)
		}
	}
	return slugs
}

// sanitizeString removes null bytes, which show up in scraped archive
// metadata and break JSON parsing and database writes.
func sanitizeString(s string) string {
	return strings.Map(func(r rune) rune {
		if r == 0 { // null byte
			return -1 // drop it
		}
		return r
	}, s)
}
