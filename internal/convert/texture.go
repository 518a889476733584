package convert

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"image"
	"io"
	"os"

	"window2d/internal/utils"

	"github.com/mauserzjeh/dxt"
	"github.com/pierrec/lz4/v4"
)

// Pixel formats stored in a .tex header.
const (
	TexFormatRGBA8888 uint32 = 0
	TexFormatDXT5     uint32 = 4
	TexFormatDXT3     uint32 = 6
	TexFormatDXT1     uint32 = 7
	TexFormatRG88     uint32 = 8
	TexFormatR8       uint32 = 9
)

const (
	texMagic      = "TEXV0005"
	texInfoMagic  = "TEXI0001"
	containerV1   = "TEXB0001"
	containerV2   = "TEXB0002"
	containerV3   = "TEXB0003"
	texMagicBytes = 8

	// Largest mipmap edge accepted; sizes read from the file are checked against it
	// before anything is allocated.
	maxTexDimension = 16384
)

// TexHeader describes the first mipmap of a Wallpaper Engine .tex container.
type TexHeader struct {
	Format        uint32
	Flags         uint32
	TextureWidth  uint32
	TextureHeight uint32
	ImageWidth    uint32
	ImageHeight   uint32
	Container     string
	ImageCount    uint32
}

type texReader struct {
	r   io.Reader
	err error
}

func (tr *texReader) uint32() uint32 {
	var v uint32
	if tr.err == nil {
		tr.err = binary.Read(tr.r, binary.LittleEndian, &v)
	}
	return v
}

// magic reads an 8 byte tag followed by its NUL terminator.
func (tr *texReader) magic() string {
	if tr.err != nil {
		return ""
	}
	buf := make([]byte, texMagicBytes+1)
	if _, err := io.ReadFull(tr.r, buf); err != nil {
		tr.err = err
		return ""
	}
	return string(bytes.TrimRight(buf, "\x00"))
}

func (tr *texReader) bytes(n uint32) []byte {
	if tr.err != nil {
		return nil
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(tr.r, buf); err != nil {
		tr.err = err
		return nil
	}
	return buf
}

// LoadTex decodes the first mipmap of a .tex file.
func LoadTex(path string) (image.Image, error) {
	utils.Debug("Decoding texture: %s", path)
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := DecodeTex(bufio.NewReader(f))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

// DecodeTex reads a .tex stream and returns its first mipmap cropped to the image size.
func DecodeTex(r io.Reader) (image.Image, TexHeader, error) {
	tr := &texReader{r: r}
	var header TexHeader

	if magic := tr.magic(); tr.err == nil && magic != texMagic {
		return nil, header, fmt.Errorf("invalid magic: %q", magic)
	}
	if info := tr.magic(); tr.err == nil && info != texInfoMagic {
		return nil, header, fmt.Errorf("invalid info magic: %q", info)
	}

	header.Format = tr.uint32()
	header.Flags = tr.uint32()
	header.TextureWidth = tr.uint32()
	header.TextureHeight = tr.uint32()
	header.ImageWidth = tr.uint32()
	header.ImageHeight = tr.uint32()
	tr.uint32() // unused

	header.Container = tr.magic()
	header.ImageCount = tr.uint32()
	if tr.err != nil {
		return nil, header, tr.err
	}

	switch header.Container {
	case containerV1, containerV2:
	case containerV3:
		tr.uint32() // image format hint
	default:
		return nil, header, fmt.Errorf("unsupported container %q", header.Container)
	}

	utils.Debug("    Format: %d, Target Size: %dx%d", header.Format, header.ImageWidth, header.ImageHeight)

	if header.ImageCount == 0 {
		return nil, header, fmt.Errorf("no image found in texture")
	}
	if mipmaps := tr.uint32(); tr.err == nil && mipmaps == 0 {
		return nil, header, fmt.Errorf("no mipmaps found in texture")
	}

	mipWidth := tr.uint32()
	mipHeight := tr.uint32()
	var compressed bool
	var decompressedSize uint32
	if header.Container != containerV1 {
		compressed = tr.uint32() == 1
		decompressedSize = tr.uint32()
	}
	dataSize := tr.uint32()
	if tr.err != nil {
		return nil, header, tr.err
	}

	if mipWidth == 0 || mipHeight == 0 || mipWidth > maxTexDimension || mipHeight > maxTexDimension {
		return nil, header, fmt.Errorf("invalid mipmap size %dx%d", mipWidth, mipHeight)
	}
	limit := maxMipmapBytes(mipWidth, mipHeight)
	if compressed {
		if decompressedSize > limit {
			return nil, header, fmt.Errorf("decompressed size %d exceeds %d for %dx%d", decompressedSize, limit, mipWidth, mipHeight)
		}
		limit = uint32(lz4.CompressBlockBound(int(limit)))
	}
	if dataSize > limit {
		return nil, header, fmt.Errorf("data size %d exceeds %d for %dx%d", dataSize, limit, mipWidth, mipHeight)
	}
	data := tr.bytes(dataSize)
	if tr.err != nil {
		return nil, header, tr.err
	}

	if compressed {
		utils.Debug("    Decompressing LZ4: %d -> %d", dataSize, decompressedSize)
		decoded := make([]byte, decompressedSize)
		n, err := lz4.UncompressBlock(data, decoded)
		if err != nil {
			return nil, header, fmt.Errorf("lz4: %w", err)
		}
		data = decoded[:n]
	}

	pix, err := decodePixels(header.Format, data, mipWidth, mipHeight)
	if err != nil {
		return nil, header, err
	}

	img := &image.NRGBA{
		Pix:    pix,
		Stride: int(mipWidth) * 4,
		Rect:   image.Rect(0, 0, int(mipWidth), int(mipHeight)),
	}

	crop := image.Rect(0, 0, int(header.ImageWidth), int(header.ImageHeight)).Intersect(img.Rect)
	if crop.Empty() {
		return img, header, nil
	}
	return img.SubImage(crop), header, nil
}

// maxMipmapBytes is the largest payload any supported format needs for a mipmap.
func maxMipmapBytes(width, height uint32) uint32 {
	rgba := width * height * 4
	blocks := ((width + 3) / 4) * ((height + 3) / 4) * 16
	return max(rgba, blocks)
}

func decodePixels(format uint32, data []byte, width, height uint32) ([]byte, error) {
	pixels := int(width) * int(height)
	blocks := int((width+3)/4) * int((height+3)/4)

	switch {
	case format == TexFormatRGBA8888 && len(data) == pixels*4:
		utils.Debug("    Type: RGBA")
		return data, nil
	case format == TexFormatDXT5 && len(data) == blocks*16:
		utils.Debug("    Type: DXT5")
		return dxt.DecodeDXT5(data, uint(width), uint(height))
	case format == TexFormatDXT3 && len(data) == blocks*16:
		utils.Debug("    Type: DXT3")
		return dxt.DecodeDXT3(data, uint(width), uint(height))
	case format == TexFormatDXT1 && len(data) == blocks*8:
		utils.Debug("    Type: DXT1")
		return dxt.DecodeDXT1(data, uint(width), uint(height))
	case format == TexFormatR8 && len(data) == pixels:
		utils.Debug("    Type: R8")
		pix := make([]byte, pixels*4)
		for i, v := range data {
			pix[i*4], pix[i*4+1], pix[i*4+2], pix[i*4+3] = v, v, v, 255
		}
		return pix, nil
	case format == TexFormatRG88 && len(data) == pixels*2:
		utils.Debug("    Type: RG88")
		pix := make([]byte, pixels*4)
		for i := 0; i < pixels; i++ {
			lum, alpha := data[i*2], data[i*2+1]
			pix[i*4], pix[i*4+1], pix[i*4+2], pix[i*4+3] = lum, lum, lum, alpha
		}
		return pix, nil
	}
	return nil, fmt.Errorf("unsupported format %d with size %d for %dx%d", format, len(data), width, height)
}
