package mdb

import (
	"bytes"
	"encoding/binary"
)

// imageBuilder assembles database images byte-for-byte for tests.
type imageBuilder struct {
	buf bytes.Buffer
}

func newImage() *imageBuilder {
	return &imageBuilder{}
}

func (b *imageBuilder) raw(p []byte) *imageBuilder {
	b.buf.Write(p)
	return b
}

func (b *imageBuilder) cstring(s string) *imageBuilder {
	b.buf.WriteString(s)
	b.buf.WriteByte(0)
	return b
}

// header writes the magic, version byte, the v1 flag block when applicable,
// and the configuration strings.
func (b *imageBuilder) header(version byte, visibility bool, root, command string) *imageBuilder {
	b.buf.Write(magic)
	b.buf.WriteByte(version)
	if version >= VersionCurrent {
		if visibility {
			b.buf.WriteByte(1)
		} else {
			b.buf.WriteByte(0)
		}
		b.buf.Write([]byte{0, 0})
	}
	return b.cstring(root).cstring(command)
}

// dir writes a directory record header: path, mtime pair, padding word.
func (b *imageBuilder) dir(path string) *imageBuilder {
	b.cstring(path)
	var fixed [16]byte
	binary.BigEndian.PutUint64(fixed[0:], 1700000000) // mtime seconds
	binary.BigEndian.PutUint32(fixed[8:], 500)        // mtime nanoseconds
	b.buf.Write(fixed[:])
	return b
}

func (b *imageBuilder) file(name string) *imageBuilder {
	b.buf.WriteByte(tagFile)
	return b.cstring(name)
}

// dirEntry announces a child directory; the caller must follow it with the
// child's own dir record and entry list.
func (b *imageBuilder) dirEntry(name string) *imageBuilder {
	b.buf.WriteByte(tagDir)
	return b.cstring(name)
}

func (b *imageBuilder) end() *imageBuilder {
	b.buf.WriteByte(tagEnd)
	return b
}

func (b *imageBuilder) bytes() []byte {
	return b.buf.Bytes()
}

// sampleImage is the canonical fixture shared across tests:
//
//	/            (directory)
//	/README      (file)
//	/etc         (directory)
//	/etc/hosts   (file)
//	/etc/nginx.conf (file)
//	/readme.txt  (file)
func sampleImage() []byte {
	return newImage().
		header(VersionCurrent, true, "/", "updatedb -o /var/lib/mlocate/mlocate.db").
		dir("/").
		file("README").
		dirEntry("etc").
		dir("/etc").
		file("hosts").
		file("nginx.conf").
		end(). // /etc
		file("readme.txt").
		end(). // /
		bytes()
}

// samplePreorder is the exact decode order sampleImage must produce.
var samplePreorder = []PathRecord{
	{Path: "/", Kind: KindDirectory},
	{Path: "/README", Kind: KindFile},
	{Path: "/etc", Kind: KindDirectory},
	{Path: "/etc/hosts", Kind: KindFile},
	{Path: "/etc/nginx.conf", Kind: KindFile},
	{Path: "/readme.txt", Kind: KindFile},
}
