// Package split breaks a multi-document JNLPBA corpus file into one file
// per MEDLINE document.
package split

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/cognicore/standoff/internal/logger"
)

const (
	DefaultSuffix = "conll"
	DefaultDir    = "JNLPBA"
)

var (
	ErrMissingPMID      = errors.New("missing PMID")
	ErrMissingEmptyLine = errors.New("missing empty line after PMID")
)

// newDocPattern matches the line that starts a new document.
var newDocPattern = regexp.MustCompile(`^###MEDLINE:(\d+)$`)

// Splitter writes each document of a corpus to <dir>/<pmid>.<suffix>.
// Names already written by this splitter get a "-2", "-3", ... affix.
type Splitter struct {
	dir     string
	suffix  string
	written map[string]struct{}
	paths   []string
	log     logrus.FieldLogger
}

// New creates a splitter writing into dir. Empty dir or suffix select the
// defaults.
func New(dir, suffix string, log logrus.FieldLogger) *Splitter {
	if dir == "" {
		dir = DefaultDir
	}
	if suffix == "" {
		suffix = DefaultSuffix
	}
	return &Splitter{
		dir:     dir,
		suffix:  suffix,
		written: make(map[string]struct{}),
		log:     logger.OrDiscard(log),
	}
}

// Paths returns the files written so far, in write order.
func (s *Splitter) Paths() []string {
	return append([]string(nil), s.paths...)
}

// SplitFile splits the corpus file at path.
func (s *Splitter) SplitFile(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()

	return s.Split(f)
}

// Split reads a corpus and writes one file per document. It returns the
// number of files written.
func (s *Splitter) Split(r io.Reader) (int, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var (
		pmid      string
		lines     []string
		skipEmpty bool
		count     int
	)

	flush := func() error {
		ok, err := s.output(lines, pmid)
		if ok {
			count++
		}
		return err
	}

	for scanner.Scan() {
		l := scanner.Text()

		if skipEmpty {
			if strings.TrimSpace(l) != "" {
				return count, errors.Wrapf(ErrMissingEmptyLine, "PMID %s", pmid)
			}
			skipEmpty = false
			continue
		}

		if m := newDocPattern.FindStringSubmatch(l); m != nil {
			if err := flush(); err != nil {
				return count, err
			}
			pmid = m[1]
			lines = nil
			// skip empty following PMID line
			skipEmpty = true
			continue
		}
		lines = append(lines, l)
	}
	if err := scanner.Err(); err != nil {
		return count, errors.Wrap(err, "read corpus")
	}

	// last doc
	if err := flush(); err != nil {
		return count, err
	}
	return count, nil
}

func (s *Splitter) output(lines []string, pmid string) (bool, error) {
	if len(lines) == 0 {
		return false, nil
	}
	if pmid == "" {
		return false, errors.Wrapf(ErrMissingPMID, "%d lines before first document marker", len(lines))
	}

	base := s.uniqueBase(pmid)
	path := filepath.Join(s.dir, base+"."+s.suffix)
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")), 0o644); err != nil {
		return false, errors.Wrapf(err, "write %s", path)
	}

	s.written[base] = struct{}{}
	s.paths = append(s.paths, path)
	return true, nil
}

// uniqueBase returns pmid, or the first "<pmid>-N" (N >= 2) not yet written.
func (s *Splitter) uniqueBase(pmid string) string {
	if _, dup := s.written[pmid]; !dup {
		return pmid
	}
	for i := 2; ; i++ {
		base := fmt.Sprintf("%s-%d", pmid, i)
		if _, dup := s.written[base]; !dup {
			s.log.Debugf("Duplicate PMID %s, writing %s", pmid, base)
			return base
		}
	}
}
