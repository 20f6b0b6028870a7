package constraints

import "github.com/hornet-web/hornet/config"

// Constraints resolves byte ceilings for the decoders. Every accessor takes the size of the
// read buffer in use and never returns less than it, so a single chunk read from the socket
// can't be rejected on its own. Constraints are immutable and safe to share between
// connections.
type Constraints struct {
	maxHeadSize     int
	maxHeaderNumber int
	maxBodySize     int
	maxPartHeader   int
	maxFileSize     int
	maxValueSize    int
	fieldLimits     map[string]int
}

func New(cfg *config.Config) *Constraints {
	limits := make(map[string]int, len(cfg.Body.Form.FieldLimits))
	for field, limit := range cfg.Body.Form.FieldLimits {
		limits[field] = limit
	}

	return &Constraints{
		maxHeadSize:     cfg.Headers.MaxSpace,
		maxHeaderNumber: cfg.Headers.MaxNumber,
		maxBodySize:     cfg.Body.MaxSize,
		maxPartHeader:   cfg.Body.Form.MaxHeaderSize,
		maxFileSize:     cfg.Body.Form.MaxFileSize,
		maxValueSize:    cfg.Body.Form.MaxValueSize,
		fieldLimits:     limits,
	}
}

// MaxRequestHeaderSize limits the request line together with the header fields.
func (c *Constraints) MaxRequestHeaderSize(buffSize int) int {
	return max(c.maxHeadSize, buffSize)
}

// MaxHeaderNumber is the only limit not floored by the buffer size, as it counts lines
// instead of bytes.
func (c *Constraints) MaxHeaderNumber() int {
	return c.maxHeaderNumber
}

func (c *Constraints) MaxBodySize(buffSize int) int {
	return max(c.maxBodySize, buffSize)
}

// MaxHeaderSize limits the header block of a single multipart part.
func (c *Constraints) MaxHeaderSize(buffSize int) int {
	return max(c.maxPartHeader, buffSize)
}

func (c *Constraints) MaxValueSize(buffSize int) int {
	return max(c.maxValueSize, buffSize)
}

// MaxSizeForField returns the limit for a text value of the field, preferring the
// per-field override.
func (c *Constraints) MaxSizeForField(field string, buffSize int) int {
	if limit, found := c.fieldLimits[field]; found {
		return max(limit, buffSize)
	}

	return c.MaxValueSize(buffSize)
}

// MaxSizeForFile returns the limit for a file uploaded under the field, preferring the
// per-field override.
func (c *Constraints) MaxSizeForFile(field string, buffSize int) int {
	if limit, found := c.fieldLimits[field]; found {
		return max(limit, buffSize)
	}

	return max(c.maxFileSize, buffSize)
}
