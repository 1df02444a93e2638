package transport

import "io"

// ProgressFunc receives cumulative transferred bytes and the expected
// total. Total is -1 when the size is unknown.
type ProgressFunc func(loaded, total int64)

// ProgressReader reports upload progress as the request body is consumed.
// The plain JSON client cannot observe body reads, so large binary
// transfers (backup import, tar restore) wrap their bodies in one of
// these instead.
type ProgressReader struct {
	r        io.Reader
	total    int64
	loaded   int64
	progress ProgressFunc
}

func NewProgressReader(r io.Reader, total int64, fn ProgressFunc) *ProgressReader {
	return &ProgressReader{r: r, total: total, progress: fn}
}

func (p *ProgressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.loaded += int64(n)
		if p.progress != nil {
			p.progress(p.loaded, p.total)
		}
	}
	return n, err
}
