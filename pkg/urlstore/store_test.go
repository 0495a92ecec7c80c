package urlstore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"igharvest/pkg/models"
)

const (
	postURL    = "https://scontent.cdninstagram.com/v/t51.82787-15/491234567_123_456_n.jpg"
	anotherURL = "https://scontent.cdninstagram.com/v/t51.75761-15/100000001_222_333_n.jpg"
	avatarURL  = "https://scontent.cdninstagram.com/v/t51.2885-19/12345_n.jpg"
)

func TestAdmit(t *testing.T) {
	s := New()

	t.Run("accepts full-size URL", func(t *testing.T) {
		added := s.Admit(models.Candidate{URL: postURL, Source: models.SourceDOM})
		assert.True(t, added)
		assert.Equal(t, 1, s.Len())
	})

	t.Run("duplicate admission adds nothing", func(t *testing.T) {
		added := s.Admit(models.Candidate{URL: postURL, Source: models.SourceNetworkLog})
		assert.False(t, added)
		assert.Equal(t, 1, s.Len())
	})

	t.Run("rejected URL never stored", func(t *testing.T) {
		added := s.Admit(models.Candidate{URL: avatarURL, Source: models.SourceDOM})
		assert.False(t, added)
		assert.Equal(t, 1, s.Len())
		assert.Equal(t, 1, s.Rejected())
	})

	t.Run("trailing punctuation is trimmed before keying", func(t *testing.T) {
		added := s.Admit(models.Candidate{URL: postURL + ").", Source: models.SourceTextScan})
		assert.False(t, added, "punctuation variant should collide with the clean URL")
		assert.Equal(t, 1, s.Len())
	})

	t.Run("empty and whitespace URLs are ignored", func(t *testing.T) {
		assert.False(t, s.Admit(models.Candidate{URL: ""}))
		assert.False(t, s.Admit(models.Candidate{URL: "   "}))
		assert.Equal(t, 1, s.Len())
	})
}

func TestAllSorted(t *testing.T) {
	s := New()

	// Admit out of lexicographic order
	require.True(t, s.Admit(models.Candidate{URL: anotherURL, Source: models.SourceDOM}))
	require.True(t, s.Admit(models.Candidate{URL: postURL, Source: models.SourceDOM}))

	all := s.All()
	require.Len(t, all, 2)
	assert.Equal(t, anotherURL, all[0])
	assert.Equal(t, postURL, all[1])
}

func TestSource(t *testing.T) {
	s := New()
	require.True(t, s.Admit(models.Candidate{URL: postURL, Source: models.SourceNetworkLog}))

	src, ok := s.Source(postURL)
	require.True(t, ok)
	assert.Equal(t, models.SourceNetworkLog, src)

	_, ok = s.Source("https://example.com/missing.jpg")
	assert.False(t, ok)
}

func TestPersistAndLoad(t *testing.T) {
	tempDir := t.TempDir()
	path := filepath.Join(tempDir, "urls.txt")

	s := New()
	require.True(t, s.Admit(models.Candidate{URL: postURL, Source: models.SourceDOM}))
	require.True(t, s.Admit(models.Candidate{URL: anotherURL, Source: models.SourceNetworkLog}))

	require.NoError(t, s.Persist(path))

	t.Run("file format is sorted with trailing newline", func(t *testing.T) {
		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, anotherURL+"\n"+postURL+"\n", string(data))
	})

	t.Run("round trip yields identical set", func(t *testing.T) {
		loaded, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, s.All(), loaded.All())
	})

	t.Run("persist overwrites instead of appending", func(t *testing.T) {
		require.NoError(t, s.Persist(path))

		loaded, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, 2, loaded.Len())
	})
}

func TestLoadSkipsJunkLines(t *testing.T) {
	tempDir := t.TempDir()
	path := filepath.Join(tempDir, "urls.txt")

	content := "\n" +
		"# not a url\n" +
		postURL + "\n" +
		"   \n" +
		avatarURL + "\n" + // fails classification on reload
		anotherURL + "\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	loaded, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 2, loaded.Len())
	assert.Equal(t, []string{anotherURL, postURL}, loaded.All())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.txt"))
	assert.Error(t, err)
}

func TestPersistCreatesParentDirectory(t *testing.T) {
	tempDir := t.TempDir()
	path := filepath.Join(tempDir, "nested", "deeper", "urls.txt")

	s := New()
	require.True(t, s.Admit(models.Candidate{URL: postURL, Source: models.SourceDOM}))

	require.NoError(t, s.Persist(path))

	_, err := os.Stat(path)
	assert.NoError(t, err)
}
