package governance

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/stjordanis/icon-service/common"
	"github.com/stjordanis/icon-service/governance"
)

// Transport method names of the JSON-RPC endpoint.
const (
	rpcCall = "icx_call"

	callDataType = "call"
)

// CallData is the contract-call payload embedded in a transaction envelope.
// Mutating governance methods are submitted through the external signing
// and transaction path; BuildCallData prepares their payload.
type CallData struct {
	Method string            `json:"method"`
	Params map[string]string `json:"params,omitempty"`
}

// BuildAcceptScoreCall prepares the acceptScore call payload.
func BuildAcceptScoreCall(deployTx common.TxHash) CallData {
	return CallData{
		Method: governance.MethodAcceptScore,
		Params: map[string]string{"txHash": deployTx.String()},
	}
}

// BuildRejectScoreCall prepares the rejectScore call payload.
func BuildRejectScoreCall(deployTx common.TxHash, reason string) CallData {
	return CallData{
		Method: governance.MethodRejectScore,
		Params: map[string]string{"txHash": deployTx.String(), "reason": reason},
	}
}

// BuildAddAuditorCall prepares the addAuditor call payload.
func BuildAddAuditorCall(auditor common.Address) CallData {
	return CallData{
		Method: governance.MethodAddAuditor,
		Params: map[string]string{"address": auditor.String()},
	}
}

// BuildRemoveAuditorCall prepares the removeAuditor call payload.
func BuildRemoveAuditorCall(auditor common.Address) CallData {
	return CallData{
		Method: governance.MethodRemoveAuditor,
		Params: map[string]string{"address": auditor.String()},
	}
}

// BuildSelfRevokeCall prepares the selfRevoke call payload.
func BuildSelfRevokeCall() CallData {
	return CallData{Method: governance.MethodSelfRevoke}
}

// Client calls read-only governance methods over the JSON-RPC endpoint.
type Client struct {
	endpoint string
	http     *http.Client
}

// NewClient constructs a client of the JSON-RPC server at endpoint.
// httpClient is optional.
func NewClient(endpoint string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{endpoint: endpoint, http: httpClient}
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      string `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  json.RawMessage `json:"error"`
}

type callParams struct {
	To       string   `json:"to"`
	DataType string   `json:"dataType"`
	Data     CallData `json:"data"`
}

// GetScoreStatus queries the deployment status of score.
func (c *Client) GetScoreStatus(ctx context.Context, score common.Address) (*ScoreStatus, error) {
	raw, err := c.call(ctx, CallData{
		Method: governance.MethodGetScoreStatus,
		Params: map[string]string{"address": score.String()},
	})
	if err != nil {
		return nil, err
	}

	var status ScoreStatus
	if err := json.Unmarshal(raw, &status); err != nil {
		return nil, fmt.Errorf("decode score status: %w", err)
	}
	return &status, nil
}

func (c *Client) call(ctx context.Context, data CallData) (json.RawMessage, error) {
	body, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		ID:      uuid.NewString(),
		Method:  rpcCall,
		Params: callParams{
			To:       common.GovernanceAddress.String(),
			DataType: callDataType,
			Data:     data,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	var out rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if out.Error != nil {
		return nil, decodeError(out.Error)
	}
	return out.Result, nil
}
