package schema

import "fmt"

// ColumnLetter converts a zero-based column index to its spreadsheet-style
// letter: 0 -> A, 25 -> Z, 26 -> AA, 701 -> ZZ, 702 -> AAA.
func ColumnLetter(index int) string {
	if index < 0 {
		return ""
	}
	var letters []byte
	n := index
	for {
		letters = append([]byte{byte('A' + n%26)}, letters...)
		n = n/26 - 1
		if n < 0 {
			break
		}
	}
	return string(letters)
}

// LetterToIndex is the inverse of ColumnLetter. Returns -1 for input that is
// not a run of uppercase letters.
func LetterToIndex(letters string) int {
	if letters == "" {
		return -1
	}
	n := 0
	for i := 0; i < len(letters); i++ {
		c := letters[i]
		if c < 'A' || c > 'Z' {
			return -1
		}
		n = n*26 + int(c-'A') + 1
	}
	return n - 1
}

// CellRef renders a spreadsheet-style cell coordinate for error messages.
// Row numbers are 1-based and exclude the header row.
func CellRef(col, row int) string {
	return fmt.Sprintf("Column %s%d", ColumnLetter(col), row+1)
}
