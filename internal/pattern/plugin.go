package pattern

import (
	"context"
	"fmt"
	"net/rpc"
	"os/exec"
	"slices"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-plugin"
)

// Handshake is the go-plugin handshake shared by swatch and model
// backends. Only binaries presenting this cookie are accepted.
var Handshake = plugin.HandshakeConfig{
	ProtocolVersion:  1,
	MagicCookieKey:   "SWATCH_MODEL_PLUGIN",
	MagicCookieValue: "swatch_pattern_model",
}

// pluginName is the key under which the model is dispensed.
const pluginName = "model"

// ModelInfo describes a remote model.
type ModelInfo struct {
	Labels    []string
	InputSize int
	Layout    Layout
}

// PredictArgs is the request for a remote forward pass. Timeout carries
// the caller's remaining deadline; zero means none.
type PredictArgs struct {
	Input   []float32
	Timeout time.Duration
}

// ModelRPC implements the go-plugin Plugin interface for pattern models.
type ModelRPC struct {
	plugin.Plugin
	Impl Model
}

// Server returns an RPC server for this plugin.
func (p *ModelRPC) Server(*plugin.MuxBroker) (any, error) {
	return &ModelRPCServer{Impl: p.Impl}, nil
}

// Client returns an RPC client for this plugin.
func (p *ModelRPC) Client(_ *plugin.MuxBroker, c *rpc.Client) (any, error) {
	return &ModelRPCClient{client: c}, nil
}

// ModelRPCServer is the RPC server implementation for pattern models.
type ModelRPCServer struct {
	Impl Model
}

// Predict implements the RPC method for a forward pass. The pass is
// bounded by the deadline the host sent.
func (s *ModelRPCServer) Predict(args PredictArgs, resp *[]float32) error {
	ctx := context.Background()
	if args.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, args.Timeout)
		defer cancel()
	}
	out, err := s.Impl.Predict(ctx, args.Input)
	if err != nil {
		return err
	}
	*resp = out
	return nil
}

// Describe implements the RPC method for fetching model information.
func (s *ModelRPCServer) Describe(_ any, resp *ModelInfo) error {
	*resp = ModelInfo{
		Labels:    s.Impl.Labels(),
		InputSize: s.Impl.InputSize(),
		Layout:    s.Impl.Layout(),
	}
	return nil
}

// ModelRPCClient is the RPC client implementation for pattern models.
type ModelRPCClient struct {
	client *rpc.Client
}

// Predict calls the remote Predict method. The deadline of ctx is sent
// along so the backend gives up too; cancellation without a deadline only
// abandons the call locally.
func (c *ModelRPCClient) Predict(ctx context.Context, input []float32) ([]float32, error) {
	args := PredictArgs{Input: input}
	if deadline, ok := ctx.Deadline(); ok {
		args.Timeout = time.Until(deadline)
		if args.Timeout <= 0 {
			return nil, context.DeadlineExceeded
		}
	}
	var out []float32
	call := c.client.Go("Plugin.Predict", args, &out, make(chan *rpc.Call, 1))
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case done := <-call.Done:
		if done.Error != nil {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			return nil, done.Error
		}
		return out, nil
	}
}

// Describe calls the remote Describe method.
func (c *ModelRPCClient) Describe() (ModelInfo, error) {
	var info ModelInfo
	err := c.client.Call("Plugin.Describe", new(any), &info)
	return info, err
}

// PluginModel is a Model served by a separate backend process.
type PluginModel struct {
	client *plugin.Client
	rpc    *ModelRPCClient
	info   ModelInfo
}

// NewPluginModel starts the backend command and connects to it. command
// is a binary path optionally followed by arguments, e.g.
// "/usr/bin/swatch model-plugin".
func NewPluginModel(command string, logger hclog.Logger) (*PluginModel, error) {
	argv := strings.Fields(command)
	if len(argv) == 0 {
		return nil, fmt.Errorf("%w: plugin command is empty", ErrModelLoad)
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	client := plugin.NewClient(&plugin.ClientConfig{
		HandshakeConfig: Handshake,
		Plugins: map[string]plugin.Plugin{
			pluginName: &ModelRPC{},
		},
		Cmd:              exec.Command(argv[0], argv[1:]...), // #nosec G204 - operator-configured model backend
		AllowedProtocols: []plugin.Protocol{plugin.ProtocolNetRPC},
		Logger:           logger.Named("plugin"),
	})

	rpcClient, err := client.Client()
	if err != nil {
		client.Kill()
		return nil, fmt.Errorf("%w: failed to get RPC client: %w", ErrModelLoad, err)
	}

	raw, err := rpcClient.Dispense(pluginName)
	if err != nil {
		client.Kill()
		return nil, fmt.Errorf("%w: failed to dispense plugin: %w", ErrModelLoad, err)
	}

	m, err := newPluginModel(client, raw.(*ModelRPCClient))
	if err != nil {
		client.Kill()
		return nil, err
	}
	return m, nil
}

func newPluginModel(client *plugin.Client, rpcClient *ModelRPCClient) (*PluginModel, error) {
	info, err := rpcClient.Describe()
	if err != nil {
		return nil, fmt.Errorf("%w: failed to describe model: %w", ErrModelLoad, err)
	}
	if len(info.Labels) == 0 || info.InputSize < 1 {
		return nil, fmt.Errorf("%w: plugin reported labels=%v input size=%d",
			ErrModelLoad, info.Labels, info.InputSize)
	}
	if info.Layout == "" {
		info.Layout = LayoutNHWC
	}
	return &PluginModel{client: client, rpc: rpcClient, info: info}, nil
}

// Predict implements Model.
func (m *PluginModel) Predict(ctx context.Context, input []float32) ([]float32, error) {
	out, err := m.rpc.Predict(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInference, err)
	}
	return out, nil
}

// Labels implements Model.
func (m *PluginModel) Labels() []string { return slices.Clone(m.info.Labels) }

// InputSize implements Model.
func (m *PluginModel) InputSize() int { return m.info.InputSize }

// Layout implements Model.
func (m *PluginModel) Layout() Layout { return m.info.Layout }

// Close stops the backend process.
func (m *PluginModel) Close() error {
	if m.client != nil {
		m.client.Kill()
	}
	return nil
}

// ServeModel serves m to a swatch host over go-plugin. It blocks until the
// host disconnects and is meant to be called from a backend's main.
func ServeModel(m Model) {
	plugin.Serve(&plugin.ServeConfig{
		HandshakeConfig: Handshake,
		Plugins: map[string]plugin.Plugin{
			pluginName: &ModelRPC{Impl: m},
		},
	})
}
