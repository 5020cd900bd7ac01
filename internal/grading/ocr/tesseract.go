package ocr

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// Tesseract extracts text by shelling out to the tesseract binary in TSV
// mode, which reports a per-word confidence alongside the text.
type Tesseract struct {
	Lang        string
	Timeout     time.Duration
	ReviewBelow float64 // mean confidence under this flags NeedsReview
}

func NewTesseract() *Tesseract {
	return &Tesseract{Lang: "eng", Timeout: 20 * time.Second, ReviewBelow: 60}
}

func (t *Tesseract) Extract(ctx context.Context, r io.Reader) (Result, error) {
	f, err := os.CreateTemp("", "scan-*.img")
	if err != nil {
		return Result{}, err
	}
	defer func() { f.Close(); os.Remove(f.Name()) }()
	if _, err := io.Copy(f, r); err != nil {
		return Result{}, err
	}
	return t.exec(ctx, f.Name())
}

func (t *Tesseract) exec(ctx context.Context, inPath string) (Result, error) {
	if _, err := exec.LookPath("tesseract"); err != nil {
		return Result{}, errors.New("tesseract not found in PATH")
	}
	args := []string{inPath, "stdout"}
	if t.Lang != "" {
		args = append(args, "-l", t.Lang)
	}
	args = append(args, "tsv")
	if t.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.Timeout)
		defer cancel()
	}
	cmd := exec.CommandContext(ctx, "tesseract", args...)
	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return Result{}, errors.New(stderr.String())
	}
	res := parseTSV(out.String())
	res.NeedsReview = res.WordCount == 0 || res.Confidence < t.ReviewBelow
	return res, nil
}

// parseTSV walks tesseract's TSV output collecting recognized words and
// averaging their confidences. Rows with conf -1 are layout markers, not
// words.
func parseTSV(tsv string) Result {
	var words []string
	var confSum float64
	lines := strings.Split(tsv, "\n")
	for i, line := range lines {
		if i == 0 { // header
			continue
		}
		cols := strings.Split(line, "\t")
		if len(cols) < 12 {
			continue
		}
		conf, err := strconv.ParseFloat(cols[10], 64)
		if err != nil || conf < 0 {
			continue
		}
		text := strings.TrimSpace(cols[11])
		if text == "" {
			continue
		}
		words = append(words, text)
		confSum += conf
	}
	res := Result{Text: strings.Join(words, " "), WordCount: len(words)}
	if len(words) > 0 {
		res.Confidence = confSum / float64(len(words))
	}
	return res
}
