package localstore

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLikePattern(t *testing.T) {
	require.Equal(t, "%meeting%", LikePattern("meeting"))
	require.Equal(t, `%50\%\_off\\%`, LikePattern(`50%_off\`))
	require.Equal(t, "%%", LikePattern(""))
	require.Equal(t, "%ête saam%", LikePattern("ÊTE Saam"))
}

func TestFold_UnicodeLower(t *testing.T) {
	s, err := Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	var got string
	require.NoError(t, s.DB.QueryRow(`SELECT fold(?)`, "Ête SAAM MÔRE").Scan(&got))
	require.Equal(t, "ête saam môre", got)

	var null sql.NullString
	require.NoError(t, s.DB.QueryRow(`SELECT fold(NULL)`).Scan(&null))
	require.False(t, null.Valid)

	var hit bool
	require.NoError(t, s.DB.QueryRow(`SELECT fold(?) LIKE ? ESCAPE '\'`, "Oupa se Ëend", LikePattern("ëEND")).Scan(&hit))
	require.True(t, hit)
}
