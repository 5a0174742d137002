package evalsvc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// Client calls the Evaluator service over an existing connection
type Client struct {
	conn grpc.ClientConnInterface
}

// NewClient wraps conn
func NewClient(conn grpc.ClientConnInterface) *Client {
	return &Client{conn: conn}
}

func (c *Client) invoke(ctx context.Context, method string, req map[string]interface{}, opts ...grpc.CallOption) (*structpb.Struct, error) {
	in, err := structpb.NewStruct(req)
	if err != nil {
		return nil, err
	}
	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, FullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// Evaluate evaluates expr at point
func (c *Client) Evaluate(ctx context.Context, expr string, point map[string]string) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodEvaluate, map[string]interface{}{
		"expression": expr,
		"point":      pointValue(point),
	})
}

// EvaluateSnapshot evaluates function of a stored snapshot at point and
// optionally records the result
func (c *Client) EvaluateSnapshot(ctx context.Context, snapshotID string, function int, point map[string]string, record bool) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodEvaluate, map[string]interface{}{
		"snapshot_id": snapshotID,
		"function":    function,
		"point":       pointValue(point),
		"record":      record,
	})
}

// Cancel reduces num/den
func (c *Client) Cancel(ctx context.Context, num, den string) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodCancel, map[string]interface{}{
		"numerator":   num,
		"denominator": den,
	})
}

// Export renders exprs in format; a non-empty name saves a snapshot
func (c *Client) Export(ctx context.Context, format, name string, exprs ...string) (*structpb.Struct, error) {
	list := make([]interface{}, len(exprs))
	for i, e := range exprs {
		list[i] = e
	}
	return c.invoke(ctx, MethodExport, map[string]interface{}{
		"expressions": list,
		"format":      format,
		"save":        name != "",
		"name":        name,
	})
}

// Health returns the server health report
func (c *Client) Health(ctx context.Context) (*structpb.Struct, error) {
	return c.invoke(ctx, MethodHealth, map[string]interface{}{})
}

func pointValue(point map[string]string) map[string]interface{} {
	out := make(map[string]interface{}, len(point))
	for k, v := range point {
		out[k] = v
	}
	return out
}
