package util

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDescoreUnderscore(t *testing.T) {
	require.Equal(t, "Main Page", Descore("Main_Page"))
	require.Equal(t, "Talk:Foo bar", Descore(" Talk:Foo_bar "))
	require.Equal(t, "Main_Page", Underscore("Main Page"))
	require.Equal(t, "C++", Underscore(Descore("C++")))
}

func TestFuzzyMatch(t *testing.T) {
	require.True(t, FuzzyMatch("", "anything"))
	require.True(t, FuzzyMatch("brt", "Albert Einstein"))
	require.False(t, FuzzyMatch("zzz", "Albert Einstein"))
}

func TestScoreTitles(t *testing.T) {
	cands := []string{"Barack Obama", "Bob Dylan", "Obama (surname)"}
	require.Equal(t, cands, ScoreTitles("", cands, 2))
	require.Nil(t, ScoreTitles("qqq", cands, 2))

	got := ScoreTitles("obama", cands, 1)
	require.Len(t, got, 1)
	require.Contains(t, got[0], "Obama")
}
