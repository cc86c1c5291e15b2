package backend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cocofhu/mcp-adapter-console/schema"
)

func TestDecodeList(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		names []string
	}{
		{name: "bare_array", body: `[{"id":1,"name":"a"},{"id":2,"name":"b"}]`, names: []string{"a", "b"}},
		{name: "member_envelope", body: `{"custom_types":[{"id":1,"name":"a"}]}`, names: []string{"a"}},
		{name: "data_envelope", body: `{"success":true,"data":[{"id":3,"name":"c"}]}`, names: []string{"c"}},
		{name: "empty_body", body: ``, names: []string{}},
		{name: "null", body: `null`, names: []string{}},
		{name: "null_member", body: `{"custom_types":null}`, names: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeList[schema.CustomType]([]byte(tt.body), "custom_types")
			require.NoError(t, err)
			names := make([]string, 0, len(got))
			for _, ct := range got {
				names = append(names, ct.Name)
			}
			assert.Equal(t, tt.names, names)
		})
	}
}

func TestDecodeListErrors(t *testing.T) {
	for _, body := range []string{`{"other":[]}`, `"text"`, `[1,2]`, `{`} {
		_, err := decodeList[schema.CustomType]([]byte(body), "custom_types")
		assert.ErrorIs(t, err, errDecode, body)
	}
}

func TestDecodeRecord(t *testing.T) {
	got, err := decodeRecord[schema.Application]([]byte(`{"success":true,"message":"ok","data":{"id":4,"name":"weather"}}`))
	require.NoError(t, err)
	assert.Equal(t, int64(4), got.ID)

	got, err = decodeRecord[schema.Application]([]byte(`{"id":5,"name":"maps"}`))
	require.NoError(t, err)
	assert.Equal(t, "maps", got.Name)

	got, err = decodeRecord[schema.Application](nil)
	require.NoError(t, err)
	assert.Zero(t, got.ID)

	_, err = decodeRecord[schema.Interface]([]byte(`{"method":"TRACE"}`))
	assert.ErrorIs(t, err, errDecode)
}

func TestErrorDetail(t *testing.T) {
	assert.Equal(t, "", errorDetail(nil))
	assert.Equal(t, "plain", errorDetail([]byte(" plain \n")))
	assert.Equal(t, "bad", errorDetail([]byte(`{"error":"bad","message":"ignored"}`)))
	assert.Equal(t, "msg", errorDetail([]byte(`{"message":"msg"}`)))
	assert.Equal(t, `{"code":7}`, errorDetail([]byte(`{"code":7}`)))
	assert.Equal(t, "{broken", errorDetail([]byte("{broken")))
}

func TestFriendlyStatus(t *testing.T) {
	assert.Equal(t, "invalid request", FriendlyStatus(400))
	assert.Equal(t, "resource not found", FriendlyStatus(404))
	assert.Equal(t, "request failed (status 502)", FriendlyStatus(502))
}
