package report

import (
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

type junitSuites struct {
	XMLName  xml.Name     `xml:"testsuites"`
	Tests    int          `xml:"tests,attr"`
	Failures int          `xml:"failures,attr"`
	Suites   []junitSuite `xml:"testsuite"`
}

type junitSuite struct {
	Name     string      `xml:"name,attr"`
	Tests    int         `xml:"tests,attr"`
	Failures int         `xml:"failures,attr"`
	Cases    []junitCase `xml:"testcase"`
}

type junitCase struct {
	Name      string        `xml:"name,attr"`
	Classname string        `xml:"classname,attr"`
	Failure   *junitFailure `xml:"failure,omitempty"`
}

type junitFailure struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
	Body    string `xml:",chardata"`
}

// WriteJUnit writes the report as JUnit XML so CI systems can display
// each record as a test case.
func (r *Report) WriteJUnit(w io.Writer) error {
	return writeJUnit(w, []junitSuite{r.junitSuite()})
}

func (r *Report) junitSuite() junitSuite {
	suite := junitSuite{
		Name:  r.Source,
		Tests: r.Records,
	}
	if suite.Name == "" {
		suite.Name = r.Catalog
	}

	byRecord := make(map[int][]Entry)
	for _, e := range r.Errors {
		index := 0
		if e.Record != nil {
			index = *e.Record
		}
		byRecord[index] = append(byRecord[index], e)
	}

	for i := 0; i < r.Records; i++ {
		tc := junitCase{
			Name:      fmt.Sprintf("record %d", i),
			Classname: r.Catalog,
		}
		if errs := byRecord[i]; len(errs) > 0 {
			var body strings.Builder
			for _, e := range errs {
				if e.Field != nil {
					body.WriteString(*e.Field + ": ")
				}
				body.WriteString(e.Kind + ": " + e.Message + "\n")
			}
			tc.Failure = &junitFailure{
				Message: plural(len(errs), "error"),
				Type:    errs[0].Kind,
				Body:    body.String(),
			}
			suite.Failures++
		}
		suite.Cases = append(suite.Cases, tc)
	}
	return suite
}

func writeJUnit(w io.Writer, suites []junitSuite) error {
	doc := junitSuites{Suites: suites}
	for _, s := range suites {
		doc.Tests += s.Tests
		doc.Failures += s.Failures
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}
