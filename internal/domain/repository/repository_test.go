package repository

import (
	"testing"

	"algoprep/internal/common"
	"algoprep/internal/domain/model"

	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

func TestStepsColumnCodec(t *testing.T) {
	data, err := encodeSteps(nil)
	require.NoError(t, err)
	require.Equal(t, "[]", string(data))

	steps, err := decodeSteps(nil)
	require.NoError(t, err)
	require.Empty(t, steps)

	steps, err = decodeSteps([]byte(`[{"message":"a","list":"x -> null"},{"array":[1,2],"highlight":[1]}]`))
	require.NoError(t, err)
	require.Len(t, steps, 2)
	require.True(t, steps[0].List.Preformatted)
	require.Equal(t, []model.StepKind{model.KindArray}, steps[1].Kinds())

	roundTrip, err := encodeSteps(steps)
	require.NoError(t, err)
	require.JSONEq(t, `[{"message":"a","list":"x -> null"},{"array":[1,2],"highlight":[1]}]`, string(roundTrip))

	_, err = decodeSteps([]byte(`{"not":"a list"}`))
	require.Error(t, err)
}

func TestEscapeLike(t *testing.T) {
	require.Equal(t, `100\% \_sum\\`, escapeLike(`100% _sum\`))
	require.Equal(t, "two sum", escapeLike("two sum"))
}

func TestPgCodes(t *testing.T) {
	wrapped := errors.Wrap(&pgconn.PgError{Code: "23505"}, "insert")
	require.True(t, isUniqueViolation(wrapped))
	require.False(t, isForeignKeyViolation(wrapped))
	require.True(t, isForeignKeyViolation(&pgconn.PgError{Code: "23503"}))
	require.Equal(t, "", pgCode(common.ErrNotFound))
}

func TestRunJobKey(t *testing.T) {
	require.Equal(t, "run_job:abc", runJobKey("abc"))
}
