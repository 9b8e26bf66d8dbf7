package explainer

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// SampleFile names one of the bundled demo recordings
type SampleFile string

const (
	SampleLick        SampleFile = "lick"
	SampleLickOctaves SampleFile = "lickOctaves"
	SampleLickChords  SampleFile = "lickChords"
	SampleOneNote     SampleFile = "oneNote"
)

// DefaultSample is loaded when nothing else is selected
const DefaultSample = SampleLick

const sampleExtension = ".wav"

// AllSampleFiles returns the bundled samples in menu order
func AllSampleFiles() []SampleFile {
	return []SampleFile{SampleLick, SampleLickOctaves, SampleLickChords, SampleOneNote}
}

// ParseSampleFile matches s against the bundled sample names, ignoring case
// and a trailing ".wav"
func ParseSampleFile(s string) (SampleFile, error) {
	name := strings.TrimSuffix(strings.TrimSpace(s), sampleExtension)
	for _, f := range AllSampleFiles() {
		if strings.EqualFold(name, string(f)) {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown sample %q", s)
}

// Path returns the location of the sample inside dir
func (f SampleFile) Path(dir string) string {
	return filepath.Join(dir, string(f)+sampleExtension)
}

// DisplayName splits the camel-case name into title-cased words,
// e.g. "lickOctaves" becomes "Lick Octaves"
func (f SampleFile) DisplayName() string {
	var words []string
	start := 0
	for i, r := range string(f) {
		if i > 0 && unicode.IsUpper(r) {
			words = append(words, string(f)[start:i])
			start = i
		}
	}
	words = append(words, string(f)[start:])

	return cases.Title(language.English).String(strings.Join(words, " "))
}

func (f SampleFile) String() string {
	return string(f)
}
