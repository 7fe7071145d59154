package parser

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/conorfennell/cardfold/internal/domain"
)

const (
	frontPrefix = "Q:"
	backPrefix  = "A:"
	separator   = "---"
)

type state int

const (
	seeking state = iota
	readingFront
	readingBack
)

// ParseFile reads a markdown file and extracts all cards from it.
func ParseFile(path string) ([]domain.Card, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return Parse(file)
}

// Parse extracts cards from Q:/A: blocks. A block's first line starts
// with its prefix; following lines belong to it until the next prefix,
// a "---" separator, or EOF. A card needs both faces to count; stray
// fragments are dropped rather than erroring, so one bad block never
// loses a whole file.
func Parse(r io.Reader) ([]domain.Card, error) {
	var (
		cards   []domain.Card
		current domain.Card
		block   []string
		mode    = seeking
	)

	closeBlock := func() {
		if len(block) == 0 {
			return
		}
		content := strings.TrimSpace(strings.Join(block, "\n"))
		if mode == readingFront {
			current.Front = content
		} else if mode == readingBack {
			current.Back = content
		}
		block = nil
	}

	closeCard := func() {
		closeBlock()
		if current.Front != "" && current.Back != "" {
			cards = append(cards, current)
		}
		current = domain.Card{}
		mode = seeking
	}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.TrimSpace(line) == separator:
			closeCard()
		case strings.HasPrefix(line, frontPrefix):
			// A new front always starts a new card.
			closeCard()
			mode = readingFront
			block = append(block, strings.TrimPrefix(line, frontPrefix))
		case strings.HasPrefix(line, backPrefix):
			closeBlock()
			mode = readingBack
			block = append(block, strings.TrimPrefix(line, backPrefix))
		case mode != seeking:
			block = append(block, line)
		}
	}
	closeCard()

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return cards, nil
}
