// internal/prompts/rotator.go
package prompts

import (
	"bufio"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"strings"
	"sync"
	"time"
)

// ErrExhausted is returned by Next when the unused pool is empty. The caller
// decides the policy: recycle the used pool or stop issuing prompts.
var ErrExhausted = errors.New("prompts: unused pool exhausted")

// Rotator hands out prompts from an unused pool, uniformly at random and
// without repetition, moving each issued prompt to the used pool. The pools
// are mirrored to two line-delimited text files so a server restart does not
// repeat prompts players have already seen.
type Rotator struct {
	mu     sync.Mutex
	unused []string
	used   []string
	rng    *rand.Rand

	unusedFile string
	usedFile   string
}

// NewRotator loads the pools from the given files. A missing unused file is
// created empty (matching the original loader behavior) rather than treated
// as an error, so a fresh checkout still boots.
func NewRotator(unusedFile, usedFile string) (*Rotator, error) {
	unused, err := loadLines(unusedFile, true)
	if err != nil {
		return nil, fmt.Errorf("load unused prompts: %w", err)
	}
	used, err := loadLines(usedFile, false)
	if err != nil {
		return nil, fmt.Errorf("load used prompts: %w", err)
	}
	return &Rotator{
		unused:     unused,
		used:       used,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
		unusedFile: unusedFile,
		usedFile:   usedFile,
	}, nil
}

// NewMemoryRotator builds a Rotator over an in-memory pool, used by tests and
// by callers that manage persistence themselves.
func NewMemoryRotator(pool []string) *Rotator {
	unused := make([]string, 0, len(pool))
	for _, p := range pool {
		if s := strings.TrimSpace(p); s != "" {
			unused = append(unused, s)
		}
	}
	return &Rotator{
		unused: unused,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Next issues one prompt, moving it from the unused to the used pool and
// persisting both files. Returns ErrExhausted when nothing is left.
func (r *Rotator) Next() (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.unused) == 0 {
		return "", ErrExhausted
	}
	i := r.rng.Intn(len(r.unused))
	prompt := r.unused[i]
	r.unused = append(r.unused[:i], r.unused[i+1:]...)
	r.used = append(r.used, prompt)

	if err := r.persist(); err != nil {
		// The prompt is still valid in memory; losing the mirror only risks a
		// repeat after a restart. Report but do not fail the draw.
		return prompt, fmt.Errorf("persist prompt pools: %w", err)
	}
	return prompt, nil
}

// IsExhausted reports whether the unused pool is empty.
func (r *Rotator) IsExhausted() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.unused) == 0
}

// Remaining returns the number of prompts still available.
func (r *Rotator) Remaining() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.unused)
}

// Recycle moves the entire used pool back into the unused pool. Dedupes
// case-insensitively so a prompt present in both files is not doubled.
func (r *Rotator) Recycle() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[string]bool, len(r.unused)+len(r.used))
	for _, p := range r.unused {
		seen[normalize(p)] = true
	}
	moved := 0
	for _, p := range r.used {
		if !seen[normalize(p)] {
			r.unused = append(r.unused, p)
			seen[normalize(p)] = true
			moved++
		}
	}
	r.used = r.used[:0]

	if err := r.persist(); err != nil {
		// Same stance as Next: in-memory state is authoritative.
		return moved
	}
	return moved
}

// persist rewrites the unused file and the used file. Assumes lock is held.
// No-op for in-memory rotators.
func (r *Rotator) persist() error {
	if r.unusedFile == "" {
		return nil
	}
	if err := writeLines(r.unusedFile, r.unused); err != nil {
		return err
	}
	return writeLines(r.usedFile, r.used)
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// loadLines reads non-blank trimmed lines. When createMissing is set, a
// missing file is created empty and an empty slice returned.
func loadLines(path string, createMissing bool) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			if createMissing {
				if werr := os.WriteFile(path, nil, 0o644); werr != nil {
					return nil, werr
				}
			}
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	return lines, sc.Err()
}

func writeLines(path string, lines []string) error {
	var b strings.Builder
	for _, line := range lines {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return os.WriteFile(path, []byte(b.String()), 0o644)
}
