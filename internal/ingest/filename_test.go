package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

func mojibake(t *testing.T, s string) string {
	t.Helper()
	garbled, err := charmap.Windows1252.NewDecoder().String(s)
	require.NoError(t, err)
	return garbled
}

func latin1Mojibake(t *testing.T, s string) string {
	t.Helper()
	garbled, err := charmap.ISO8859_1.NewDecoder().String(s)
	require.NoError(t, err)
	return garbled
}

func TestRepairFilename_RecoversLatin1Decodes(t *testing.T) {
	for _, original := range []string{"中文.txt", "文件.pdf", "测试文档.pdf", "图片 2024.png"} {
		t.Run(original, func(t *testing.T) {
			garbled := latin1Mojibake(t, original)
			require.NotEqual(t, original, garbled)

			assert.Equal(t, original, RepairFilename(garbled))
		})
	}

	assert.Equal(t, "ä¸\u00adæ\u0096\u0087.txt", latin1Mojibake(t, "中文.txt"))
}

func TestRepairFilename_RecoversCJK(t *testing.T) {
	original := "测试文档.pdf"
	garbled := mojibake(t, original)
	require.NotEqual(t, original, garbled)

	assert.Equal(t, original, RepairFilename(garbled))
}

func TestRepairFilename_LeavesCleanNamesAlone(t *testing.T) {
	cases := []string{
		"",
		"report.pdf",
		"测试文档.pdf",
		"façade.txt",
		"Bär.png",
		"ſomething.txt",
	}

	for _, name := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, name, RepairFilename(name))
		})
	}
}

func TestRepairFilename_RejectsNonCJKDecodes(t *testing.T) {
	// "é" encoded as UTF-8 and read back as Windows-1252 looks like "Ã©",
	// which has no marker rune, so nothing happens.
	garbled := mojibake(t, "café.txt")
	assert.Equal(t, garbled, RepairFilename(garbled))

	// "ø" garbles to "Ã¸": the marker is there and the bytes decode, but not to CJK.
	garbled = mojibake(t, "ø.txt")
	assert.Equal(t, garbled, RepairFilename(garbled))
}

func TestRepairFilename_Idempotent(t *testing.T) {
	inputs := []string{
		mojibake(t, "测试文档.pdf"),
		mojibake(t, "图片 2024.png"),
		latin1Mojibake(t, "中文.txt"),
		"plain.txt",
		"混合 ä 名称.txt",
		"",
	}

	for _, in := range inputs {
		once := RepairFilename(in)
		assert.Equal(t, once, RepairFilename(once), "input %q", in)
	}
}

func TestRepairFilename_NeverUndoesRepair(t *testing.T) {
	repaired := RepairFilename(mojibake(t, "数据.csv"))
	require.True(t, containsCJK(repaired))
	assert.True(t, containsCJK(RepairFilename(repaired)))
}
