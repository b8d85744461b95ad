package codec

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/danielpatrickdp/rate-advisor/internal/shipping"
)

// #region mock

type mockConn struct {
	grpc.ClientConnInterface

	replies map[string]map[string]any
	err     error

	method string
	req    map[string]any
}

func (m *mockConn) Invoke(_ context.Context, method string, args, reply any, _ ...grpc.CallOption) error {
	m.method = method
	m.req = args.(*structpb.Struct).AsMap()
	if m.err != nil {
		return m.err
	}
	s, err := structpb.NewStruct(m.replies[method])
	if err != nil {
		return err
	}
	reply.(*structpb.Struct).Fields = s.Fields
	return nil
}

// #endregion mock

func TestNewClient(t *testing.T) {
	c, err := NewClient("localhost:0")
	require.NoError(t, err)
	assert.NoError(t, c.Close())
	assert.NoError(t, NewClientWithConn(&mockConn{}).Close())
}

func TestClassifyFollowUp(t *testing.T) {
	m := &mockConn{replies: map[string]map[string]any{
		MethodClassifyFollowUp: {"isFollowUp": true, "cues": []any{"verify", "reference"}},
	}}
	c := NewClientWithConn(m)

	sig, err := c.ClassifyFollowUp(context.Background(), "are you sure?", "recommended ExpressSaver")
	require.NoError(t, err)
	assert.True(t, sig.IsFollowUp)
	assert.Equal(t, []shipping.Cue{shipping.CueVerify, shipping.CueReference}, sig.Cues)
	assert.Equal(t, MethodClassifyFollowUp, m.method)
	assert.Equal(t, "are you sure?", m.req["text"])
	assert.Equal(t, "recommended ExpressSaver", m.req["priorSummary"])
}

func TestExtractParameters(t *testing.T) {
	m := &mockConn{replies: map[string]map[string]any{
		MethodExtract: {"destinationText": "Los Angels", "weightLb": 15.0, "urgency": "economy", "budgetText": "$30"},
	}}
	ex, err := NewClientWithConn(m).ExtractParameters(context.Background(), "15 lb to Los Angels")
	require.NoError(t, err)
	assert.Equal(t, "Los Angels", ex.DestinationText)
	require.NotNil(t, ex.WeightLb)
	assert.Equal(t, 15.0, *ex.WeightLb)
	assert.Equal(t, shipping.UrgencyEconomy, ex.Urgency)
	assert.Equal(t, "$30", ex.BudgetText)
	assert.Nil(t, ex.Zone)
}

func TestExtractRejectsFractionalZone(t *testing.T) {
	m := &mockConn{replies: map[string]map[string]any{MethodExtract: {"zone": 3.5}}}
	_, err := NewClientWithConn(m).ExtractParameters(context.Background(), "zone 3.5")
	assert.ErrorIs(t, err, ErrBadReply)
}

func TestDetectRestrictedGoods(t *testing.T) {
	m := &mockConn{replies: map[string]map[string]any{
		MethodRestricted: {"detected": true, "category": "living", "terms": []any{"puppy"}},
	}}
	r, err := NewClientWithConn(m).DetectRestrictedGoods(context.Background(), "ship a puppy")
	require.NoError(t, err)
	assert.True(t, r.Detected)
	assert.Equal(t, shipping.RestrictionLiving, r.Category)
	assert.Equal(t, []string{"puppy"}, r.Terms)

	m.replies[MethodRestricted] = map[string]any{"detected": true}
	_, err = NewClientWithConn(m).DetectRestrictedGoods(context.Background(), "ship a puppy")
	assert.ErrorIs(t, err, ErrBadReply)
}

func TestStatusTranslation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"deadline", status.Error(codes.DeadlineExceeded, "slow"), context.DeadlineExceeded},
		{"canceled", status.Error(codes.Canceled, "gone"), context.Canceled},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewClientWithConn(&mockConn{err: tt.err}).ExtractParameters(context.Background(), "x")
			assert.ErrorIs(t, err, tt.want)
		})
	}

	_, err := NewClientWithConn(&mockConn{err: status.Error(codes.Unavailable, "down")}).ExtractParameters(context.Background(), "x")
	require.Error(t, err)
	assert.NotErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, codes.Unavailable, status.Code(errUnwrapAll(err)))
}

func errUnwrapAll(err error) error {
	type unwrapper interface{ Unwrap() error }
	for {
		u, ok := err.(unwrapper)
		if !ok {
			return err
		}
		err = u.Unwrap()
	}
}
