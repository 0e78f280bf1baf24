package core

import (
	"github.com/mus-format/mus-go"
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

// MUS serializers for the persistent domain types. Field order is the wire
// format: changing it breaks existing databases.
var (
	IDMUS            = idMUS{}
	SongMUS          = songMUS{}
	SectionMUS       = sectionMUS{}
	IndexManifestMUS = indexManifestMUS{}
)

var (
	stringsMUS = ord.NewSliceSer[string](ord.String)
	vectorMUS  = ord.NewSliceSer[float32](raw.Float32)
	timeMUS    = raw.TimeUnixMicro
)

var (
	_ mus.Serializer[ID]            = IDMUS
	_ mus.Serializer[Song]          = SongMUS
	_ mus.Serializer[Section]       = SectionMUS
	_ mus.Serializer[IndexManifest] = IndexManifestMUS
)

type idMUS struct{}

func (idMUS) Marshal(v ID, bs []byte) int {
	return varint.Uint64.Marshal(uint64(v), bs)
}

func (idMUS) Unmarshal(bs []byte) (ID, int, error) {
	v, n, err := varint.Uint64.Unmarshal(bs)
	return ID(v), n, err
}

func (idMUS) Size(v ID) int {
	return varint.Uint64.Size(uint64(v))
}

func (idMUS) Skip(bs []byte) (int, error) {
	return varint.Uint64.Skip(bs)
}

type songMUS struct{}

func (songMUS) Marshal(v Song, bs []byte) (n int) {
	n = IDMUS.Marshal(v.Id, bs)
	n += ord.String.Marshal(v.SourceId, bs[n:])
	n += ord.String.Marshal(v.Title, bs[n:])
	n += ord.String.Marshal(v.Artist, bs[n:])
	n += stringsMUS.Marshal(v.Genres, bs[n:])
	n += varint.Int.Marshal(v.Popularity, bs[n:])
	n += ord.String.Marshal(v.ReleaseDate, bs[n:])
	n += ord.String.Marshal(v.URL, bs[n:])
	n += ord.String.Marshal(v.FullLyrics, bs[n:])
	n += vectorMUS.Marshal(v.Vector, bs[n:])
	n += timeMUS.Marshal(v.InsertedAt, bs[n:])
	n += timeMUS.Marshal(v.UpdatedAt, bs[n:])
	return n
}

func (songMUS) Unmarshal(bs []byte) (v Song, n int, err error) {
	var c int
	if v.Id, n, err = IDMUS.Unmarshal(bs); err != nil {
		return
	}
	if v.SourceId, c, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + c, err
	}
	n += c
	if v.Title, c, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + c, err
	}
	n += c
	if v.Artist, c, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + c, err
	}
	n += c
	if v.Genres, c, err = stringsMUS.Unmarshal(bs[n:]); err != nil {
		return v, n + c, err
	}
	n += c
	if v.Popularity, c, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return v, n + c, err
	}
	n += c
	if v.ReleaseDate, c, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + c, err
	}
	n += c
	if v.URL, c, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + c, err
	}
	n += c
	if v.FullLyrics, c, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + c, err
	}
	n += c
	if v.Vector, c, err = vectorMUS.Unmarshal(bs[n:]); err != nil {
		return v, n + c, err
	}
	n += c
	if v.InsertedAt, c, err = timeMUS.Unmarshal(bs[n:]); err != nil {
		return v, n + c, err
	}
	n += c
	if v.UpdatedAt, c, err = timeMUS.Unmarshal(bs[n:]); err != nil {
		return v, n + c, err
	}
	n += c
	return v, n, nil
}

func (songMUS) Size(v Song) (size int) {
	size = IDMUS.Size(v.Id)
	size += ord.String.Size(v.SourceId)
	size += ord.String.Size(v.Title)
	size += ord.String.Size(v.Artist)
	size += stringsMUS.Size(v.Genres)
	size += varint.Int.Size(v.Popularity)
	size += ord.String.Size(v.ReleaseDate)
	size += ord.String.Size(v.URL)
	size += ord.String.Size(v.FullLyrics)
	size += vectorMUS.Size(v.Vector)
	size += timeMUS.Size(v.InsertedAt)
	size += timeMUS.Size(v.UpdatedAt)
	return size
}

func (songMUS) Skip(bs []byte) (n int, err error) {
	var c int
	if n, err = IDMUS.Skip(bs); err != nil {
		return
	}
	for i := 0; i < 3; i++ {
		if c, err = ord.String.Skip(bs[n:]); err != nil {
			return n + c, err
		}
		n += c
	}
	if c, err = stringsMUS.Skip(bs[n:]); err != nil {
		return n + c, err
	}
	n += c
	if c, err = varint.Int.Skip(bs[n:]); err != nil {
		return n + c, err
	}
	n += c
	for i := 0; i < 3; i++ {
		if c, err = ord.String.Skip(bs[n:]); err != nil {
			return n + c, err
		}
		n += c
	}
	if c, err = vectorMUS.Skip(bs[n:]); err != nil {
		return n + c, err
	}
	n += c
	for i := 0; i < 2; i++ {
		if c, err = timeMUS.Skip(bs[n:]); err != nil {
			return n + c, err
		}
		n += c
	}
	return n, nil
}

type sectionMUS struct{}

func (sectionMUS) Marshal(v Section, bs []byte) (n int) {
	n = IDMUS.Marshal(v.Id, bs)
	n += IDMUS.Marshal(v.SongId, bs[n:])
	n += ord.String.Marshal(v.Title, bs[n:])
	n += ord.String.Marshal(v.Artist, bs[n:])
	n += stringsMUS.Marshal(v.Genres, bs[n:])
	n += ord.String.Marshal(v.Type, bs[n:])
	n += varint.Int.Marshal(v.Number, bs[n:])
	n += varint.Int.Marshal(v.Position, bs[n:])
	n += ord.String.Marshal(v.Text, bs[n:])
	n += vectorMUS.Marshal(v.Vector, bs[n:])
	return n
}

func (sectionMUS) Unmarshal(bs []byte) (v Section, n int, err error) {
	var c int
	if v.Id, n, err = IDMUS.Unmarshal(bs); err != nil {
		return
	}
	if v.SongId, c, err = IDMUS.Unmarshal(bs[n:]); err != nil {
		return v, n + c, err
	}
	n += c
	if v.Title, c, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + c, err
	}
	n += c
	if v.Artist, c, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + c, err
	}
	n += c
	if v.Genres, c, err = stringsMUS.Unmarshal(bs[n:]); err != nil {
		return v, n + c, err
	}
	n += c
	if v.Type, c, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + c, err
	}
	n += c
	if v.Number, c, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return v, n + c, err
	}
	n += c
	if v.Position, c, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return v, n + c, err
	}
	n += c
	if v.Text, c, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + c, err
	}
	n += c
	if v.Vector, c, err = vectorMUS.Unmarshal(bs[n:]); err != nil {
		return v, n + c, err
	}
	n += c
	return v, n, nil
}

func (sectionMUS) Size(v Section) (size int) {
	size = IDMUS.Size(v.Id)
	size += IDMUS.Size(v.SongId)
	size += ord.String.Size(v.Title)
	size += ord.String.Size(v.Artist)
	size += stringsMUS.Size(v.Genres)
	size += ord.String.Size(v.Type)
	size += varint.Int.Size(v.Number)
	size += varint.Int.Size(v.Position)
	size += ord.String.Size(v.Text)
	size += vectorMUS.Size(v.Vector)
	return size
}

func (sectionMUS) Skip(bs []byte) (n int, err error) {
	var c int
	if n, err = IDMUS.Skip(bs); err != nil {
		return
	}
	if c, err = IDMUS.Skip(bs[n:]); err != nil {
		return n + c, err
	}
	n += c
	for i := 0; i < 2; i++ {
		if c, err = ord.String.Skip(bs[n:]); err != nil {
			return n + c, err
		}
		n += c
	}
	if c, err = stringsMUS.Skip(bs[n:]); err != nil {
		return n + c, err
	}
	n += c
	if c, err = ord.String.Skip(bs[n:]); err != nil {
		return n + c, err
	}
	n += c
	for i := 0; i < 2; i++ {
		if c, err = varint.Int.Skip(bs[n:]); err != nil {
			return n + c, err
		}
		n += c
	}
	if c, err = ord.String.Skip(bs[n:]); err != nil {
		return n + c, err
	}
	n += c
	if c, err = vectorMUS.Skip(bs[n:]); err != nil {
		return n + c, err
	}
	n += c
	return n, nil
}

type indexManifestMUS struct{}

func (indexManifestMUS) Marshal(v IndexManifest, bs []byte) (n int) {
	n = ord.String.Marshal(v.EmbeddingModel, bs)
	n += varint.Int.Marshal(v.Dimensions, bs[n:])
	n += timeMUS.Marshal(v.BuiltAt, bs[n:])
	n += timeMUS.Marshal(v.UpdatedAt, bs[n:])
	return n
}

func (indexManifestMUS) Unmarshal(bs []byte) (v IndexManifest, n int, err error) {
	var c int
	if v.EmbeddingModel, n, err = ord.String.Unmarshal(bs); err != nil {
		return
	}
	if v.Dimensions, c, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return v, n + c, err
	}
	n += c
	if v.BuiltAt, c, err = timeMUS.Unmarshal(bs[n:]); err != nil {
		return v, n + c, err
	}
	n += c
	if v.UpdatedAt, c, err = timeMUS.Unmarshal(bs[n:]); err != nil {
		return v, n + c, err
	}
	n += c
	return v, n, nil
}

func (indexManifestMUS) Size(v IndexManifest) (size int) {
	size = ord.String.Size(v.EmbeddingModel)
	size += varint.Int.Size(v.Dimensions)
	size += timeMUS.Size(v.BuiltAt)
	size += timeMUS.Size(v.UpdatedAt)
	return size
}

func (indexManifestMUS) Skip(bs []byte) (n int, err error) {
	var c int
	if n, err = ord.String.Skip(bs); err != nil {
		return
	}
	if c, err = varint.Int.Skip(bs[n:]); err != nil {
		return n + c, err
	}
	n += c
	for i := 0; i < 2; i++ {
		if c, err = timeMUS.Skip(bs[n:]); err != nil {
			return n + c, err
		}
		n += c
	}
	return n, nil
}
