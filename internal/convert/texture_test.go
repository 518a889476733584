package convert

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/pierrec/lz4/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type texFixture struct {
	container  string
	format     uint32
	mipW, mipH uint32
	imgW, imgH uint32
	compress   bool
	data       []byte

	// decompressedSize overrides the size recorded for compressed data.
	decompressedSize uint32
}

func writeMagic(buf *bytes.Buffer, magic string) {
	buf.WriteString(magic)
	buf.WriteByte(0)
}

func (f texFixture) bytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	put := func(v uint32) { binary.Write(&buf, binary.LittleEndian, v) }

	writeMagic(&buf, texMagic)
	writeMagic(&buf, texInfoMagic)
	put(f.format)
	put(0) // flags
	put(f.mipW)
	put(f.mipH)
	put(f.imgW)
	put(f.imgH)
	put(0)
	writeMagic(&buf, f.container)
	put(1) // image count
	if f.container == containerV3 {
		put(0)
	}
	put(1) // mipmaps
	put(f.mipW)
	put(f.mipH)

	payload := f.data
	if f.container != containerV1 {
		if f.compress {
			compressed := make([]byte, lz4.CompressBlockBound(len(f.data)))
			n, err := lz4.CompressBlock(f.data, compressed, nil)
			require.NoError(t, err)
			require.NotZero(t, n, "fixture data must be compressible")
			payload = compressed[:n]
			put(1)
		} else {
			put(0)
		}
		if f.decompressedSize != 0 {
			put(f.decompressedSize)
		} else {
			put(uint32(len(f.data)))
		}
	}
	put(uint32(len(payload)))
	buf.Write(payload)
	return buf.Bytes()
}

func solidRGBA(n int, c color.NRGBA) []byte {
	data := make([]byte, 0, n*4)
	for i := 0; i < n; i++ {
		data = append(data, c.R, c.G, c.B, c.A)
	}
	return data
}

func TestDecodeTexRGBA(t *testing.T) {
	green := color.NRGBA{0, 255, 0, 255}
	fixture := texFixture{container: containerV1, format: TexFormatRGBA8888, mipW: 2, mipH: 2, imgW: 2, imgH: 2,
		data: solidRGBA(4, green)}

	img, header, err := DecodeTex(bytes.NewReader(fixture.bytes(t)))
	require.NoError(t, err)
	assert.Equal(t, containerV1, header.Container)
	assert.Equal(t, image.Rect(0, 0, 2, 2), img.Bounds())
	assert.Equal(t, green, color.NRGBAModel.Convert(img.At(1, 1)))
}

func TestDecodeTexLZ4(t *testing.T) {
	red := color.NRGBA{255, 0, 0, 255}
	for _, container := range []string{containerV2, containerV3} {
		t.Run(container, func(t *testing.T) {
			fixture := texFixture{container: container, format: TexFormatRGBA8888, mipW: 16, mipH: 16, imgW: 16, imgH: 16,
				compress: true, data: solidRGBA(256, red)}

			img, _, err := DecodeTex(bytes.NewReader(fixture.bytes(t)))
			require.NoError(t, err)
			assert.Equal(t, red, color.NRGBAModel.Convert(img.At(15, 15)))
		})
	}
}

func TestDecodeTexCropsToImageSize(t *testing.T) {
	fixture := texFixture{container: containerV2, format: TexFormatRGBA8888, mipW: 4, mipH: 4, imgW: 3, imgH: 2,
		data: solidRGBA(16, color.NRGBA{1, 2, 3, 255})}

	img, header, err := DecodeTex(bytes.NewReader(fixture.bytes(t)))
	require.NoError(t, err)
	assert.EqualValues(t, 4, header.TextureWidth)
	assert.Equal(t, image.Rect(0, 0, 3, 2), img.Bounds())
}

func TestDecodeTexGrayscale(t *testing.T) {
	r8 := texFixture{container: containerV2, format: TexFormatR8, mipW: 2, mipH: 1, imgW: 2, imgH: 1,
		data: []byte{10, 200}}
	img, _, err := DecodeTex(bytes.NewReader(r8.bytes(t)))
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{200, 200, 200, 255}, color.NRGBAModel.Convert(img.At(1, 0)))

	rg88 := texFixture{container: containerV2, format: TexFormatRG88, mipW: 1, mipH: 1, imgW: 1, imgH: 1,
		data: []byte{80, 0}}
	img, _, err = DecodeTex(bytes.NewReader(rg88.bytes(t)))
	require.NoError(t, err)
	_, _, _, a := img.At(0, 0).RGBA()
	assert.Zero(t, a)
}

func TestDecodeTexDXT1(t *testing.T) {
	// One 4x4 block: color0 is pure red in RGB565, every index selects color0.
	block := []byte{0x00, 0xF8, 0x00, 0x00, 0, 0, 0, 0}
	fixture := texFixture{container: containerV2, format: TexFormatDXT1, mipW: 4, mipH: 4, imgW: 4, imgH: 4,
		data: block}

	img, _, err := DecodeTex(bytes.NewReader(fixture.bytes(t)))
	require.NoError(t, err)
	c := color.NRGBAModel.Convert(img.At(2, 2)).(color.NRGBA)
	assert.EqualValues(t, 255, c.R)
	assert.Zero(t, c.G)
	assert.Zero(t, c.B)
}

func TestDecodeTexErrors(t *testing.T) {
	valid := texFixture{container: containerV2, format: TexFormatRGBA8888, mipW: 1, mipH: 1, imgW: 1, imgH: 1,
		data: solidRGBA(1, color.NRGBA{A: 255})}

	t.Run("magic", func(t *testing.T) {
		raw := valid.bytes(t)
		copy(raw, "TEXV0004")
		_, _, err := DecodeTex(bytes.NewReader(raw))
		assert.ErrorContains(t, err, "invalid magic")
	})
	t.Run("container", func(t *testing.T) {
		bad := valid
		bad.container = "TEXB0009"
		_, _, err := DecodeTex(bytes.NewReader(bad.bytes(t)))
		assert.ErrorContains(t, err, "unsupported container")
	})
	t.Run("truncated", func(t *testing.T) {
		raw := valid.bytes(t)
		_, _, err := DecodeTex(bytes.NewReader(raw[:len(raw)-2]))
		assert.Error(t, err)
	})
	t.Run("oversized mipmap", func(t *testing.T) {
		bad := valid
		bad.mipW = maxTexDimension + 1
		_, _, err := DecodeTex(bytes.NewReader(bad.bytes(t)))
		assert.ErrorContains(t, err, "invalid mipmap size")
	})
	t.Run("oversized data", func(t *testing.T) {
		raw := valid.bytes(t)
		// dataSize is the last field before the 4 payload bytes.
		binary.LittleEndian.PutUint32(raw[len(raw)-8:], 0xFFFFFFFF)
		_, _, err := DecodeTex(bytes.NewReader(raw))
		assert.ErrorContains(t, err, "data size")
	})
	t.Run("oversized decompressed size", func(t *testing.T) {
		bad := texFixture{container: containerV2, format: TexFormatRGBA8888, mipW: 4, mipH: 4, imgW: 4, imgH: 4,
			compress: true, decompressedSize: 0xFFFFFFFF, data: solidRGBA(16, color.NRGBA{A: 255})}
		_, _, err := DecodeTex(bytes.NewReader(bad.bytes(t)))
		assert.ErrorContains(t, err, "decompressed size")
	})
	t.Run("size mismatch", func(t *testing.T) {
		bad := valid
		bad.data = []byte{1, 2, 3}
		_, _, err := DecodeTex(bytes.NewReader(bad.bytes(t)))
		assert.ErrorContains(t, err, "unsupported format")
	})
}

func TestLoadTexFromDisk(t *testing.T) {
	fixture := texFixture{container: containerV1, format: TexFormatRGBA8888, mipW: 1, mipH: 1, imgW: 1, imgH: 1,
		data: solidRGBA(1, color.NRGBA{9, 9, 9, 255})}
	path := filepath.Join(t.TempDir(), "pixel.tex")
	require.NoError(t, os.WriteFile(path, fixture.bytes(t), 0644))

	img, err := LoadImage(path)
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{9, 9, 9, 255}, color.NRGBAModel.Convert(img.At(0, 0)))

	_, err = LoadTex(filepath.Join(t.TempDir(), "missing.tex"))
	assert.Error(t, err)
}
