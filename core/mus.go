package core

import (
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

// MUS serializers for the persisted domain types. Written by hand against
// the mus-go primitives; field order is part of the storage format and
// must not change without a migration.
var (
	RecordIDMUS        = recordIDMUS{}
	DocumentMUS        = documentMUS{}
	EmbeddingRecordMUS = embeddingRecordMUS{}
)

type recordIDMUS struct{}

func (recordIDMUS) Marshal(v RecordID, bs []byte) (n int) {
	return varint.Uint64.Marshal(uint64(v), bs)
}

func (recordIDMUS) Unmarshal(bs []byte) (v RecordID, n int, err error) {
	num, n, err := varint.Uint64.Unmarshal(bs)
	return RecordID(num), n, err
}

func (recordIDMUS) Size(v RecordID) (size int) {
	return varint.Uint64.Size(uint64(v))
}

type documentMUS struct{}

func (documentMUS) Marshal(v Document, bs []byte) (n int) {
	n = ord.String.Marshal(v.Id, bs)
	n += ord.String.Marshal(v.StorageKey, bs[n:])
	n += ord.String.Marshal(v.Name, bs[n:])
	n += ord.String.Marshal(v.OwnerId, bs[n:])
	n += ord.String.Marshal(v.SourceURL, bs[n:])
	n += varint.PositiveInt.Marshal(int(v.Status), bs[n:])
	n += marshalTime(v.CreatedAt, bs[n:])
	n += marshalTime(v.UpdatedAt, bs[n:])
	return n
}

func (documentMUS) Unmarshal(bs []byte) (v Document, n int, err error) {
	var n1 int
	if v.Id, n, err = ord.String.Unmarshal(bs); err != nil {
		return
	}
	if v.StorageKey, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.Name, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.OwnerId, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.SourceURL, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	var status int
	if status, n1, err = varint.PositiveInt.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	v.Status = ProcessingStatus(status)
	if v.CreatedAt, n1, err = unmarshalTime(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.UpdatedAt, n1, err = unmarshalTime(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	return v, n, nil
}

func (documentMUS) Size(v Document) (size int) {
	size = ord.String.Size(v.Id)
	size += ord.String.Size(v.StorageKey)
	size += ord.String.Size(v.Name)
	size += ord.String.Size(v.OwnerId)
	size += ord.String.Size(v.SourceURL)
	size += varint.PositiveInt.Size(int(v.Status))
	size += sizeTime(v.CreatedAt)
	size += sizeTime(v.UpdatedAt)
	return size
}

type embeddingRecordMUS struct{}

func (embeddingRecordMUS) Marshal(v EmbeddingRecord, bs []byte) (n int) {
	n = varint.Uint64.Marshal(uint64(v.Id), bs)
	n += varint.PositiveInt.Marshal(len(v.Vector), bs[n:])
	for _, f := range v.Vector {
		n += raw.Float32.Marshal(f, bs[n:])
	}
	n += ord.String.Marshal(v.Payload.DocumentId, bs[n:])
	n += varint.PositiveInt.Marshal(v.Payload.PageIndex, bs[n:])
	n += ord.String.Marshal(v.Payload.Text, bs[n:])
	return n
}

func (embeddingRecordMUS) Unmarshal(bs []byte) (v EmbeddingRecord, n int, err error) {
	var n1 int
	var id uint64
	if id, n, err = varint.Uint64.Unmarshal(bs); err != nil {
		return
	}
	v.Id = RecordID(id)
	var length int
	if length, n1, err = varint.PositiveInt.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	v.Vector = make([]float32, length)
	for i := 0; i < length; i++ {
		if v.Vector[i], n1, err = raw.Float32.Unmarshal(bs[n:]); err != nil {
			return v, n + n1, err
		}
		n += n1
	}
	if v.Payload.DocumentId, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.Payload.PageIndex, n1, err = varint.PositiveInt.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.Payload.Text, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	return v, n, nil
}

func (embeddingRecordMUS) Size(v EmbeddingRecord) (size int) {
	size = varint.Uint64.Size(uint64(v.Id))
	size += varint.PositiveInt.Size(len(v.Vector))
	for _, f := range v.Vector {
		size += raw.Float32.Size(f)
	}
	size += ord.String.Size(v.Payload.DocumentId)
	size += varint.PositiveInt.Size(v.Payload.PageIndex)
	size += ord.String.Size(v.Payload.Text)
	return size
}

// Timestamps are stored as Unix microseconds, matching the resolution the
// storage layer indexes by.
func marshalTime(t time.Time, bs []byte) (n int) {
	return varint.Int64.Marshal(t.UnixMicro(), bs)
}

func unmarshalTime(bs []byte) (t time.Time, n int, err error) {
	micros, n, err := varint.Int64.Unmarshal(bs)
	if err != nil {
		return time.Time{}, n, err
	}
	return time.UnixMicro(micros).UTC(), n, nil
}

func sizeTime(t time.Time) (size int) {
	return varint.Int64.Size(t.UnixMicro())
}
