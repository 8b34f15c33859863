package archive

import (
	"encoding/json/v2"
	"fmt"
	"strconv"
	"strings"
)

// Archive search docs are loosely typed: the same field arrives as a
// string on one item and an array of strings on the next, and numeric
// fields are sometimes quoted. These wrapper types absorb the
// variation so a single malformed field never fails a whole page.

// flexString unmarshals from either a JSON string or an array of
// strings (joined with newlines). Numbers are accepted and formatted.
type flexString string

func (fs *flexString) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*fs = flexString(s)
		return nil
	}

	var arr []string
	if err := json.Unmarshal(data, &arr); err == nil {
		*fs = flexString(strings.Join(arr, "\n"))
		return nil
	}

	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*fs = flexString(strconv.FormatFloat(n, 'f', -1, 64))
		return nil
	}

	return fmt.Errorf("cannot unmarshal %s into flexString", string(data))
}

// flexStrings unmarshals from either a JSON array of strings or a
// single string (wrapped in a one-element slice).
type flexStrings []string

func (fs *flexStrings) UnmarshalJSON(data []byte) error {
	var arr []string
	if err := json.Unmarshal(data, &arr); err == nil {
		*fs = arr
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*fs = []string{s}
		return nil
	}

	return fmt.Errorf("cannot unmarshal %s into flexStrings", string(data))
}

// flexInt unmarshals from a JSON number, a numeric string, or an array
// whose first element is either. Unparseable values read as zero.
type flexInt int64

func (fi *flexInt) UnmarshalJSON(data []byte) error {
	var n int64
	if err := json.Unmarshal(data, &n); err == nil {
		*fi = flexInt(n)
		return nil
	}

	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		*fi = flexInt(int64(f))
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		parsed, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if err != nil {
			*fi = 0
			return nil
		}
		*fi = flexInt(parsed)
		return nil
	}

	var arr []flexInt
	if err := json.Unmarshal(data, &arr); err == nil {
		if len(arr) > 0 {
			*fi = arr[0]
		}
		return nil
	}

	return fmt.Errorf("cannot unmarshal %s into flexInt", string(data))
}

// flexFloat unmarshals from a JSON number or a numeric string.
// Unparseable strings read as zero.
type flexFloat float64

func (ff *flexFloat) UnmarshalJSON(data []byte) error {
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		*ff = flexFloat(f)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		parsed, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			*ff = 0
			return nil
		}
		*ff = flexFloat(parsed)
		return nil
	}

	return fmt.Errorf("cannot unmarshal %s into flexFloat", string(data))
}
