package transaction_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github/smartkit/relay/internal/api"
	"github/smartkit/relay/internal/relay"
	"github/smartkit/relay/internal/test"
	"github/smartkit/relay/internal/types"
)

func pendingTransaction() *relay.Transaction {
	return &relay.Transaction{
		OpHash:        "0x6f70",
		WalletAddress: "0x2222222222222222222222222222222222222222",
		To:            "0x3333333333333333333333333333333333333333",
		Value:         "1000",
		Status:        relay.StatusPending,
		ChainID:       84532,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
}

func TestPostSendTransaction(t *testing.T) {
	stub := &test.RelayStub{
		SendTransactionFn: func(_ context.Context, projectID string, req *relay.SendRequest) (*relay.Transaction, error) {
			assert.Equal(t, test.ProjectID, projectID)
			assert.Equal(t, "0x3333333333333333333333333333333333333333", req.To)
			assert.True(t, req.Sponsored)
			return pendingTransaction(), nil
		},
	}

	test.WithTestServer(t, test.NewKeyStore(), stub, func(s *api.Server) {
		body := map[string]interface{}{
			"walletAddress": "0x2222222222222222222222222222222222222222",
			"to":            "0x3333333333333333333333333333333333333333",
			"value":         "1000",
			"sponsored":     true,
		}
		res := test.PerformRequest(t, s, "POST", "/api/v1/transactions/send", body, test.AuthenticatedHeaders())
		require.Equal(t, http.StatusOK, res.Result().StatusCode)

		var response types.TransactionResponse
		require.NoError(t, json.Unmarshal(res.Body.Bytes(), &response))
		assert.Equal(t, "0x6f70", response.OpHash)
		assert.Equal(t, "pending", response.Status)
		assert.Nil(t, response.ChainHash)
	})
}

func TestPostSendTransactionDefaultsToSponsored(t *testing.T) {
	stub := &test.RelayStub{
		SendTransactionFn: func(_ context.Context, _ string, req *relay.SendRequest) (*relay.Transaction, error) {
			assert.True(t, req.Sponsored)
			return pendingTransaction(), nil
		},
	}

	test.WithTestServer(t, test.NewKeyStore(), stub, func(s *api.Server) {
		body := map[string]interface{}{
			"walletAddress": "0x2222222222222222222222222222222222222222",
			"to":            "0x3333333333333333333333333333333333333333",
			"value":         "1000",
		}
		res := test.PerformRequest(t, s, "POST", "/api/v1/transactions/send", body, test.AuthenticatedHeaders())
		require.Equal(t, http.StatusOK, res.Result().StatusCode)
	})
}

func TestPostSendTransactionOptOutOfSponsorship(t *testing.T) {
	stub := &test.RelayStub{
		SendTransactionFn: func(_ context.Context, _ string, req *relay.SendRequest) (*relay.Transaction, error) {
			assert.False(t, req.Sponsored)
			return pendingTransaction(), nil
		},
	}

	test.WithTestServer(t, test.NewKeyStore(), stub, func(s *api.Server) {
		body := map[string]interface{}{
			"walletAddress": "0x2222222222222222222222222222222222222222",
			"to":            "0x3333333333333333333333333333333333333333",
			"sponsored":     false,
		}
		res := test.PerformRequest(t, s, "POST", "/api/v1/transactions/send", body, test.AuthenticatedHeaders())
		require.Equal(t, http.StatusOK, res.Result().StatusCode)
	})
}

func TestPostSendTransactionValidationError(t *testing.T) {
	stub := &test.RelayStub{
		SendTransactionFn: func(_ context.Context, _ string, _ *relay.SendRequest) (*relay.Transaction, error) {
			return nil, relay.NewValidationError("to", "not a valid address")
		},
	}

	test.WithTestServer(t, test.NewKeyStore(), stub, func(s *api.Server) {
		body := map[string]interface{}{"walletAddress": "0x22", "to": "broken"}
		res := test.PerformRequest(t, s, "POST", "/api/v1/transactions/send", body, test.AuthenticatedHeaders())
		require.Equal(t, http.StatusBadRequest, res.Result().StatusCode)

		var response types.PublicHTTPValidationError
		require.NoError(t, json.Unmarshal(res.Body.Bytes(), &response))
		require.Len(t, response.ValidationErrors, 1)
		assert.Equal(t, "to", *response.ValidationErrors[0].Key)
	})
}

func TestPostSendTransactionSponsorshipRejected(t *testing.T) {
	stub := &test.RelayStub{
		SendTransactionFn: func(_ context.Context, _ string, _ *relay.SendRequest) (*relay.Transaction, error) {
			return nil, &relay.SponsorshipError{Err: errors.New("policy exhausted")}
		},
	}

	test.WithTestServer(t, test.NewKeyStore(), stub, func(s *api.Server) {
		body := map[string]interface{}{
			"walletAddress": "0x2222222222222222222222222222222222222222",
			"to":            "0x3333333333333333333333333333333333333333",
			"sponsored":     true,
		}
		res := test.PerformRequest(t, s, "POST", "/api/v1/transactions/send", body, test.AuthenticatedHeaders())
		require.Equal(t, http.StatusBadGateway, res.Result().StatusCode)

		var response types.PublicHTTPError
		require.NoError(t, json.Unmarshal(res.Body.Bytes(), &response))
		assert.Equal(t, types.PublicHTTPErrorTypeSponsorship, *response.Type)
	})
}

func TestPostSendTransactionRecordLost(t *testing.T) {
	stub := &test.RelayStub{
		SendTransactionFn: func(_ context.Context, _ string, _ *relay.SendRequest) (*relay.Transaction, error) {
			return nil, &relay.PersistenceError{OpHash: "0x6f70", Err: errors.New("insert failed")}
		},
	}

	test.WithTestServer(t, test.NewKeyStore(), stub, func(s *api.Server) {
		body := map[string]interface{}{
			"walletAddress": "0x2222222222222222222222222222222222222222",
			"to":            "0x3333333333333333333333333333333333333333",
		}
		res := test.PerformRequest(t, s, "POST", "/api/v1/transactions/send", body, test.AuthenticatedHeaders())
		require.Equal(t, http.StatusInternalServerError, res.Result().StatusCode)

		var response types.PublicHTTPError
		require.NoError(t, json.Unmarshal(res.Body.Bytes(), &response))
		assert.Equal(t, types.PublicHTTPErrorTypeRecordLost, *response.Type)
		assert.Equal(t, "0x6f70", response.Detail)
	})
}

func TestPostSendBatch(t *testing.T) {
	stub := &test.RelayStub{
		SendBatchFn: func(_ context.Context, _ string, req *relay.BatchRequest) (*relay.Transaction, error) {
			assert.Len(t, req.Calls, 2)
			assert.True(t, req.Sponsored)
			return pendingTransaction(), nil
		},
	}

	test.WithTestServer(t, test.NewKeyStore(), stub, func(s *api.Server) {
		body := map[string]interface{}{
			"walletAddress": "0x2222222222222222222222222222222222222222",
			"calls": []map[string]string{
				{"to": "0x3333333333333333333333333333333333333333", "value": "100"},
				{"to": "0x4444444444444444444444444444444444444444", "value": "200"},
			},
		}
		res := test.PerformRequest(t, s, "POST", "/api/v1/transactions/batch", body, test.AuthenticatedHeaders())
		require.Equal(t, http.StatusOK, res.Result().StatusCode)
	})
}

func TestGetTransactionNotFound(t *testing.T) {
	stub := &test.RelayStub{
		GetTransactionFn: func(_ context.Context, _, _ string) (*relay.Transaction, error) {
			return nil, relay.ErrTransactionNotFound
		},
	}

	test.WithTestServer(t, test.NewKeyStore(), stub, func(s *api.Server) {
		res := test.PerformRequest(t, s, "GET", "/api/v1/transactions/0x6f70", nil, test.AuthenticatedHeaders())
		require.Equal(t, http.StatusNotFound, res.Result().StatusCode)
	})
}

func TestGetTransactionListForwardsWalletFilter(t *testing.T) {
	stub := &test.RelayStub{
		ListTransactionsFn: func(_ context.Context, _, walletAddress string) ([]*relay.Transaction, error) {
			assert.Equal(t, "0x2222222222222222222222222222222222222222", walletAddress)
			return []*relay.Transaction{pendingTransaction()}, nil
		},
	}

	test.WithTestServer(t, test.NewKeyStore(), stub, func(s *api.Server) {
		res := test.PerformRequest(t, s,
			"GET", "/api/v1/transactions?wallet=0x2222222222222222222222222222222222222222", nil, test.AuthenticatedHeaders())
		require.Equal(t, http.StatusOK, res.Result().StatusCode)

		var response types.TransactionListResponse
		require.NoError(t, json.Unmarshal(res.Body.Bytes(), &response))
		assert.Equal(t, 1, response.Count)
	})
}
