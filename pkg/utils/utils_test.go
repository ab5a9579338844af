package utils

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"mime/multipart"
	"net/textproto"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/require"
)

// memFile adapts a bytes.Reader to multipart.File.
type memFile struct {
	*bytes.Reader
}

func (memFile) Close() error { return nil }

func newMemFile(data []byte) multipart.File {
	return memFile{bytes.NewReader(data)}
}

func imageHeader(contentType string, size int64) *multipart.FileHeader {
	return &multipart.FileHeader{
		Filename: "upload.jpg",
		Size:     size,
		Header:   textproto.MIMEHeader{"Content-Type": []string{contentType}},
	}
}

func encodePNG(t *testing.T, width, height int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x * 4), G: uint8(y * 4), B: 128, A: 255})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestNewULIDFromTimestamp(t *testing.T) {
	u := New()
	ts := time.Date(2025, time.March, 11, 10, 0, 0, 0, time.UTC)

	first, err := u.NewULIDFromTimestamp(ts)
	require.NoError(t, err)
	require.Len(t, first, 26)

	parsed, err := ulid.Parse(first)
	require.NoError(t, err)
	require.Equal(t, ulid.Timestamp(ts), parsed.Time())

	second, err := u.NewULIDFromTimestamp(ts)
	require.NoError(t, err)
	require.NotEqual(t, first, second)
}

func TestValidateImageFile(t *testing.T) {
	u := New()

	cases := []struct {
		name    string
		file    *multipart.FileHeader
		wantErr string
	}{
		{
			name:    "nil file",
			file:    nil,
			wantErr: "no file uploaded",
		},
		{
			name:    "oversized",
			file:    imageHeader("image/jpeg", 6*1024*1024),
			wantErr: "file size exceeds limit",
		},
		{
			name:    "not an image",
			file:    imageHeader("application/pdf", 1024),
			wantErr: "uploaded file is not an image",
		},
		{
			name: "valid jpeg",
			file: imageHeader("image/jpeg", 1024),
		},
		{
			name: "valid png",
			file: imageHeader("image/png", 4*1024*1024),
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := u.ValidateImageFile(tc.file)
			if tc.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.EqualError(t, err, tc.wantErr)
		})
	}
}

func TestFileToBytes(t *testing.T) {
	u := New()

	t.Run("round trips content", func(t *testing.T) {
		data, err := u.FileToBytes(newMemFile([]byte("snapshot")))
		require.NoError(t, err)
		require.Equal(t, []byte("snapshot"), data)
	})

	t.Run("empty file", func(t *testing.T) {
		_, err := u.FileToBytes(newMemFile(nil))
		require.EqualError(t, err, "uploaded file is empty")
	})
}

func TestConvertFileToBase64(t *testing.T) {
	u := New()

	encoded, err := u.ConvertFileToBase64(newMemFile([]byte("snapshot")))
	require.NoError(t, err)
	require.Equal(t, "c25hcHNob3Q=", encoded)
}

func TestHaversineDistance(t *testing.T) {
	u := New()

	t.Run("identical points", func(t *testing.T) {
		require.Zero(t, u.HaversineDistance(-6.2, 106.8, -6.2, 106.8))
	})

	t.Run("one degree of latitude", func(t *testing.T) {
		dist := u.HaversineDistance(-6.2, 106.8, -5.2, 106.8)
		require.InDelta(t, 111195, dist, 10)
	})

	t.Run("symmetric", func(t *testing.T) {
		there := u.HaversineDistance(-6.2, 106.8, -6.9147, 107.6098)
		back := u.HaversineDistance(-6.9147, 107.6098, -6.2, 106.8)
		require.InDelta(t, there, back, 0.001)
	})

	t.Run("campus scale offset", func(t *testing.T) {
		dist := u.HaversineDistance(-6.2, 106.8, -6.2003, 106.8)
		require.InDelta(t, 33.4, dist, 0.5)
	})
}

func TestParseClockTime(t *testing.T) {
	u := New()

	cases := []struct {
		value   string
		want    int
		wantErr bool
	}{
		{value: "00:00", want: 0},
		{value: "09:30", want: 570},
		{value: "23:59", want: 1439},
		{value: "9am", wantErr: true},
		{value: "25:99", wantErr: true},
		{value: "12:60", wantErr: true},
		{value: "", wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.value, func(t *testing.T) {
			minutes, err := u.ParseClockTime(tc.value)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.want, minutes)
		})
	}
}

func TestOptimizeImageForOCR(t *testing.T) {
	u := New()

	t.Run("downscales oversized images", func(t *testing.T) {
		source := encodePNG(t, 64, 48)

		optimized, err := u.OptimizeImageForOCR(source, 32, 32, 80)
		require.NoError(t, err)

		img, format, err := image.Decode(bytes.NewReader(optimized))
		require.NoError(t, err)
		require.Equal(t, "png", format)
		require.Equal(t, 32, img.Bounds().Dx())
		require.Equal(t, 24, img.Bounds().Dy())
	})

	t.Run("keeps dimensions that already fit", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 10, 10)), &jpeg.Options{Quality: 90}))

		optimized, err := u.OptimizeImageForOCR(buf.Bytes(), 32, 32, 80)
		require.NoError(t, err)

		img, format, err := image.Decode(bytes.NewReader(optimized))
		require.NoError(t, err)
		require.Equal(t, "jpeg", format)
		require.Equal(t, 10, img.Bounds().Dx())
		require.Equal(t, 10, img.Bounds().Dy())
	})

	t.Run("rejects data that is not an image", func(t *testing.T) {
		_, err := u.OptimizeImageForOCR([]byte("definitely not pixels"), 32, 32, 80)
		require.Error(t, err)
	})
}
