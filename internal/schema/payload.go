package schema

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Marshal encodes c with its type tag as the "type" member.
func Marshal(c Content) ([]byte, error) {
	if c == nil {
		return nil, ErrNilContent
	}
	body, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("schema: encode %s: %w", c.Type(), err)
	}
	tag, err := json.Marshal(c.Type())
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.Grow(len(body) + len(tag) + 8)
	buf.WriteString(`{"type":`)
	buf.Write(tag)
	if trimmed := bytes.TrimSpace(body); len(trimmed) > 2 {
		buf.WriteByte(',')
		buf.Write(trimmed[1:])
	} else {
		buf.WriteByte('}')
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes tagged content. Unknown members are ignored so older rows
// keep decoding after a variant gains fields.
func Unmarshal(data []byte) (Content, error) {
	var envelope struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("schema: decode content: %w", err)
	}
	content, err := New(BlockType(envelope.Type))
	if err != nil {
		return nil, fmt.Errorf("%w: %q", err, envelope.Type)
	}
	if err := json.Unmarshal(data, content); err != nil {
		return nil, fmt.Errorf("schema: decode %s: %w", content.Type(), err)
	}
	return content, nil
}

// Payload stores Content in a JSON column. Scanning never fails: a row that
// does not decode keeps its raw bytes and the decode error so callers can
// decide whether it is fatal.
type Payload struct {
	Content Content

	raw []byte
	err error
}

// NewPayload wraps c.
func NewPayload(c Content) Payload {
	return Payload{Content: c}
}

// Err returns the decode error of a scanned row, if any.
func (p Payload) Err() error { return p.err }

// Raw returns the stored bytes of a row that failed to decode.
func (p Payload) Raw() []byte { return p.raw }

// Type returns the content tag or an empty type when absent.
func (p Payload) Type() BlockType {
	if p.Content == nil {
		return ""
	}
	return p.Content.Type()
}

func (p Payload) MarshalJSON() ([]byte, error) {
	if p.Content == nil {
		if len(p.raw) > 0 {
			return p.raw, nil
		}
		return []byte("null"), nil
	}
	return Marshal(p.Content)
}

func (p *Payload) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*p = Payload{}
		return nil
	}
	content, err := Unmarshal(data)
	if err != nil {
		return err
	}
	*p = Payload{Content: content}
	return nil
}

// Value implements driver.Valuer.
func (p Payload) Value() (driver.Value, error) {
	if p.Content == nil {
		return nil, ErrNilContent
	}
	encoded, err := Marshal(p.Content)
	if err != nil {
		return nil, err
	}
	return string(encoded), nil
}

// Scan implements sql.Scanner.
func (p *Payload) Scan(src any) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*p = Payload{err: ErrNilContent}
		return nil
	case []byte:
		data = append([]byte(nil), v...)
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("schema: cannot scan %T into payload", src)
	}
	content, err := Unmarshal(data)
	if err != nil {
		*p = Payload{raw: data, err: err}
		return nil
	}
	*p = Payload{Content: content}
	return nil
}
