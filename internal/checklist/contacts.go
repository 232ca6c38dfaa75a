package checklist

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Contact is a person extracted from pasted text.
type Contact struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Positional layout of the spreadsheet export rows.
const (
	minExportColumns = 8
	nameColumn       = 2
	emailColumn      = 3
	ignoreColumn     = 7
	ignoreFlag       = "sim"
)

var (
	// columnSep splits a row on a tab or on a run of two or more blanks.
	columnSep = regexp.MustCompile(`\t|[\s\p{Zs}\x{FEFF}]{2,}`)

	emailExact    = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	emailEmbedded = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)

	nameSeparators = strings.NewReplacer(
		",", "", ";", "", ":", "", "|", "", "<", "", ">", "",
		"(", "", ")", "", "{", "", "}", "", "[", "", "]", "",
	)
)

// IsValidEmail reports whether s is a complete local@domain.tld address.
func IsValidEmail(s string) bool {
	return emailExact.MatchString(s)
}

// ExtractContacts parses pasted text, one candidate per line.
//
// Rows with at least eight columns follow the spreadsheet export layout:
// column 3 is the name, column 4 the email and column 8 an ignore flag
// ("sim" skips the row). Shorter lines are scanned for any embedded email
// and the rest of the line becomes the name. Lines without a valid email
// contribute nothing. Duplicates are kept.
func ExtractContacts(text string) []Contact {
	contacts := []Contact{}
	for _, line := range strings.Split(norm.NFC.String(text), "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}

		columns := splitColumns(line)
		if len(columns) >= minExportColumns {
			if c, ok := fromExportRow(columns); ok {
				contacts = append(contacts, c)
			}
			continue
		}

		if c, ok := fromFreeText(line); ok {
			contacts = append(contacts, c)
		}
	}
	return contacts
}

// splitColumns splits a row and drops columns that are empty after trimming.
func splitColumns(line string) []string {
	parts := columnSep.Split(line, -1)
	columns := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			columns = append(columns, p)
		}
	}
	return columns
}

func fromExportRow(columns []string) (Contact, bool) {
	if cases.Lower(language.Und).String(columns[ignoreColumn]) == ignoreFlag {
		return Contact{}, false
	}
	name := columns[nameColumn]
	email := columns[emailColumn]
	if name == "" || !IsValidEmail(email) {
		return Contact{}, false
	}
	return Contact{Name: name, Email: email}, true
}

func fromFreeText(line string) (Contact, bool) {
	email := emailEmbedded.FindString(line)
	if email == "" {
		return Contact{}, false
	}

	name := strings.TrimSpace(strings.Replace(line, email, "", 1))
	name = strings.TrimSpace(nameSeparators.Replace(name))
	if utf8.RuneCountInString(name) < 2 {
		name, _, _ = strings.Cut(email, "@")
	}
	return Contact{Name: name, Email: email}, true
}

// JoinEmails lists the contact emails separated by "; ".
func JoinEmails(contacts []Contact) string {
	emails := make([]string, len(contacts))
	for i, c := range contacts {
		emails[i] = c.Email
	}
	return strings.Join(emails, "; ")
}
