package wallet

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	demoPrefix  = "Demo"
	demoIDLen   = 13
	base36      = "0123456789abcdefghijklmnopqrstuvwxyz"
	lamportsSOL = 9 // 1 SOL = 1e9 lamports
)

// saldo mostrado quando o RPC não responde
var FallbackSOL = decimal.RequireFromString("5.234")

// Identity é a carteira conectada na sessão
type Identity struct {
	Owner      string          `json:"owner"`
	Demo       bool            `json:"demo"`
	SOLBalance decimal.Decimal `json:"solBalance"`
}

// Connector conecta carteiras Solana (ou gera uma identidade demo)
type Connector struct {
	RPCURL string
	HTTP   *http.Client
	Log    *zap.Logger
}

func NewConnector(rpcURL string, log *zap.Logger) *Connector {
	if log == nil {
		log = zap.NewNop()
	}
	return &Connector{
		RPCURL: rpcURL,
		HTTP:   &http.Client{Timeout: 3 * time.Second},
		Log:    log,
	}
}

// Connect retorna a identidade da chave pública informada.
// Sem chave gera um dono demo; o saldo SOL é só informativo.
func (c *Connector) Connect(ctx context.Context, publicKey string) (Identity, error) {
	key := strings.TrimSpace(publicKey)
	if key == "" {
		id, err := DemoOwner()
		if err != nil {
			return Identity{}, err
		}
		return Identity{Owner: id, Demo: true, SOLBalance: FallbackSOL}, nil
	}

	bal, err := c.Balance(ctx, key)
	if err != nil {
		c.Log.Warn("solana getBalance failed, using fallback", zap.String("owner", key), zap.Error(err))
		bal = FallbackSOL
	}
	return Identity{Owner: key, SOLBalance: bal}, nil
}

// DemoOwner gera "Demo" + 13 caracteres base 36
func DemoOwner() (string, error) {
	var sb strings.Builder
	sb.WriteString(demoPrefix)
	radix := big.NewInt(int64(len(base36)))
	for i := 0; i < demoIDLen; i++ {
		n, err := rand.Int(rand.Reader, radix)
		if err != nil {
			return "", fmt.Errorf("demo owner: %w", err)
		}
		sb.WriteByte(base36[n.Int64()])
	}
	return sb.String(), nil
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int    `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type rpcResponse struct {
	Result *struct {
		Value uint64 `json:"value"`
	} `json:"result"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Balance consulta getBalance e converte lamports para SOL
func (c *Connector) Balance(ctx context.Context, publicKey string) (decimal.Decimal, error) {
	if c.RPCURL == "" {
		return decimal.Zero, errors.New("solana rpc url not configured")
	}
	body, _ := json.Marshal(rpcRequest{JSONRPC: "2.0", ID: 1, Method: "getBalance", Params: []any{publicKey}})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.RPCURL, bytes.NewReader(body))
	if err != nil {
		return decimal.Zero, err
	}
	req.Header.Set("Content-Type", "application/json")
	res, err := c.HTTP.Do(req)
	if err != nil {
		return decimal.Zero, err
	}
	defer res.Body.Close()
	if res.StatusCode >= 300 {
		return decimal.Zero, fmt.Errorf("solana rpc http %d", res.StatusCode)
	}

	var out rpcResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return decimal.Zero, err
	}
	if out.Error != nil {
		return decimal.Zero, fmt.Errorf("solana rpc %d: %s", out.Error.Code, out.Error.Message)
	}
	if out.Result == nil {
		return decimal.Zero, errors.New("solana rpc: empty result")
	}
	return decimal.NewFromInt(int64(out.Result.Value)).Shift(-lamportsSOL), nil
}
