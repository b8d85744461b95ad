// Package codec is the gRPC client for a remote text understander. Messages
// travel as google.protobuf.Struct so no generated stubs are needed.
package codec

// #region imports
import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/danielpatrickdp/rate-advisor/internal/shipping"
)

// #endregion

// #region methods

const (
	serviceName            = "/rateadvisor.v1.Understander/"
	MethodClassifyFollowUp = serviceName + "ClassifyFollowUp"
	MethodExtract          = serviceName + "ExtractParameters"
	MethodRestricted       = serviceName + "DetectRestrictedGoods"
)

// ErrBadReply is returned when the remote reply does not match the
// expected shape.
var ErrBadReply = errors.New("malformed understander reply")

// #endregion methods

// #region client-struct

// Client calls the remote understander.
type Client struct {
	conn   *grpc.ClientConn
	invoke grpc.ClientConnInterface
}

// #endregion client-struct

// #region constructor

// NewClient connects to the understander gRPC server.
func NewClient(addr string) (*Client, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("grpc dial %s: %w", addr, err)
	}
	return &Client{conn: conn, invoke: conn}, nil
}

// NewClientWithConn builds a Client over an existing connection. Used for
// testing without a real server.
func NewClientWithConn(cc grpc.ClientConnInterface) *Client {
	return &Client{invoke: cc}
}

// Close shuts down the gRPC connection.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

// #endregion constructor

// #region call

func (c *Client) call(ctx context.Context, method string, req map[string]any) (map[string]any, error) {
	in, err := structpb.NewStruct(req)
	if err != nil {
		return nil, fmt.Errorf("%s: encode: %w", method, err)
	}
	out := &structpb.Struct{}
	if err := c.invoke.Invoke(ctx, method, in, out); err != nil {
		return nil, fmt.Errorf("%s: %w", method, translate(err))
	}
	return out.AsMap(), nil
}

// translate maps gRPC status codes onto context errors so callers can tell
// a timeout from an outage.
func translate(err error) error {
	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	switch st.Code() {
	case codes.DeadlineExceeded:
		return fmt.Errorf("%s: %w", st.Message(), context.DeadlineExceeded)
	case codes.Canceled:
		return fmt.Errorf("%s: %w", st.Message(), context.Canceled)
	}
	return err
}

// #endregion call

// #region classify

// ClassifyFollowUp asks whether text refers back to the prior answer.
func (c *Client) ClassifyFollowUp(ctx context.Context, text, priorSummary string) (shipping.FollowUpSignal, error) {
	m, err := c.call(ctx, MethodClassifyFollowUp, map[string]any{
		"text":         text,
		"priorSummary": priorSummary,
	})
	if err != nil {
		return shipping.FollowUpSignal{}, err
	}
	sig := shipping.FollowUpSignal{IsFollowUp: boolField(m, "isFollowUp")}
	for _, s := range stringsField(m, "cues") {
		sig.Cues = append(sig.Cues, shipping.Cue(s))
	}
	return sig, nil
}

// #endregion classify

// #region extract

// ExtractParameters pulls shipment slots from text.
func (c *Client) ExtractParameters(ctx context.Context, text string) (shipping.Extraction, error) {
	m, err := c.call(ctx, MethodExtract, map[string]any{"text": text})
	if err != nil {
		return shipping.Extraction{}, err
	}
	ex := shipping.Extraction{
		OriginText:      stringField(m, "originText"),
		DestinationText: stringField(m, "destinationText"),
		Urgency:         shipping.Urgency(stringField(m, "urgency")),
		BudgetText:      stringField(m, "budgetText"),
		ItemHint:        stringField(m, "itemHint"),
	}
	if v, ok := m["zone"].(float64); ok {
		z := int(v)
		if float64(z) != v {
			return shipping.Extraction{}, fmt.Errorf("%s: zone %v: %w", MethodExtract, v, ErrBadReply)
		}
		ex.Zone = &z
	}
	if v, ok := m["weightLb"].(float64); ok {
		ex.WeightLb = &v
	}
	return ex, nil
}

// #endregion extract

// #region restricted

// DetectRestrictedGoods asks whether text names goods the carrier refuses.
func (c *Client) DetectRestrictedGoods(ctx context.Context, text string) (shipping.Restriction, error) {
	m, err := c.call(ctx, MethodRestricted, map[string]any{"text": text})
	if err != nil {
		return shipping.Restriction{}, err
	}
	r := shipping.Restriction{
		Detected: boolField(m, "detected"),
		Category: shipping.RestrictionCategory(stringField(m, "category")),
		Terms:    stringsField(m, "terms"),
	}
	if r.Detected && r.Category == "" {
		return shipping.Restriction{}, fmt.Errorf("%s: detected without category: %w", MethodRestricted, ErrBadReply)
	}
	return r, nil
}

// #endregion restricted

// #region fields

func stringField(m map[string]any, k string) string {
	s, _ := m[k].(string)
	return s
}

func boolField(m map[string]any, k string) bool {
	b, _ := m[k].(bool)
	return b
}

func stringsField(m map[string]any, k string) []string {
	list, _ := m[k].([]any)
	out := make([]string, 0, len(list))
	for _, v := range list {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// #endregion fields
