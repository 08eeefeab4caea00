// Package fastq reads FASTQ-formatted short-read data, unpaired or as a pair
// of parallel mate files.
package fastq

import (
	"bufio"
	"errors"
	"io"
)

var (
	// ErrShort is returned when a FASTQ file ends mid-record.
	ErrShort = errors.New("truncated FASTQ record")
	// ErrInvalid is returned when a record violates the four-line layout.
	ErrInvalid = errors.New("invalid FASTQ record")
	// ErrDiscordant is returned when two mate files disagree on record count.
	ErrDiscordant = errors.New("discordant FASTQ mate files")
)

// A Read is one FASTQ record. ID is the header line without its leading '@';
// Seq and Qual are the sequence and quality lines.
type Read struct {
	ID, Seq, Qual string
}

// Name returns the read name: the ID up to the first whitespace.
func (r *Read) Name() string {
	for i := 0; i < len(r.ID); i++ {
		if r.ID[i] == ' ' || r.ID[i] == '\t' {
			return r.ID[:i]
		}
	}
	return r.ID
}

var errEOF = errors.New("eof")

// Scanner reads FASTQ records sequentially. The Scan method fills the next
// record, returning whether the scan succeeded; once it returns false it
// never returns true again, and Err reports whether scanning stopped at the
// end of the stream or on a malformed record. Scanners are not thread safe.
//
// Scanner validates the record layout: the ID line must begin with '@', line
// three with '+', and the sequence and quality lines must have equal length.
// It does not validate the base or quality alphabets.
type Scanner struct {
	b   *bufio.Scanner
	n   int
	err error
}

// NewScanner constructs a Scanner reading raw FASTQ data from r.
func NewScanner(r io.Reader) *Scanner {
	return &Scanner{b: bufio.NewScanner(r)}
}

// N returns the number of records scanned so far.
func (s *Scanner) N() int { return s.n }

// Scan reads the next record into read.
func (s *Scanner) Scan(read *Read) bool {
	if s.err != nil {
		return false
	}
	if !s.b.Scan() {
		if s.err = s.b.Err(); s.err == nil {
			s.err = errEOF
		}
		return false
	}
	id := s.b.Bytes()
	if len(id) == 0 || id[0] != '@' {
		s.err = ErrInvalid
		return false
	}
	read.ID = string(id[1:])
	if !s.scanLine() {
		return false
	}
	read.Seq = s.b.Text()
	if !s.scanLine() {
		return false
	}
	if plus := s.b.Bytes(); len(plus) == 0 || plus[0] != '+' {
		s.err = ErrInvalid
		return false
	}
	if !s.scanLine() {
		return false
	}
	read.Qual = s.b.Text()
	if len(read.Qual) != len(read.Seq) {
		s.err = ErrInvalid
		return false
	}
	s.n++
	return true
}

func (s *Scanner) scanLine() bool {
	if !s.b.Scan() {
		if s.err = s.b.Err(); s.err == nil {
			s.err = ErrShort
		}
		return false
	}
	return true
}

// Err returns the scanning error, if any.
func (s *Scanner) Err() error {
	if s.err == errEOF {
		return nil
	}
	return s.err
}

// PairScanner composes two Scanners over parallel mate files. The files must
// contain the same number of records in the same order.
type PairScanner struct {
	r1, r2 *Scanner
	err    error
}

// NewPairScanner creates a PairScanner from the mate-1 and mate-2 readers.
func NewPairScanner(r1, r2 io.Reader) *PairScanner {
	return &PairScanner{r1: NewScanner(r1), r2: NewScanner(r2)}
}

// Scan reads the next record of each mate file.
func (p *PairScanner) Scan(r1, r2 *Read) bool {
	ok1 := p.r1.Scan(r1)
	ok2 := p.r2.Scan(r2)
	if ok1 != ok2 {
		p.err = ErrDiscordant
	}
	return ok1 && ok2
}

// Err returns the scanning error, if any. It should be checked after Scan
// returns false.
func (p *PairScanner) Err() error {
	if err := p.r1.Err(); err != nil {
		return err
	}
	if err := p.r2.Err(); err != nil {
		return err
	}
	return p.err
}
