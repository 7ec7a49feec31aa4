package relay_test

import (
	"bytes"
	"context"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github/smartkit/relay/internal/metrics"
	"github/smartkit/relay/internal/relay"
	"github/smartkit/relay/internal/relay/account"
	"github/smartkit/relay/internal/relay/bundler"
	"github/smartkit/relay/internal/relay/paymaster"
	"github/smartkit/relay/internal/relay/signer"
	"github/smartkit/relay/internal/relay/userop"
)

const (
	testProject = "b9f39945-4e9f-4f38-9a79-d726bdd173d1"
	testKeyHex  = "4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"
)

type testEnv struct {
	store     *fakeStore
	reader    *fakeChainReader
	bundler   *fakeBundler
	paymaster *fakePaymaster
	service   relay.Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := newFakeStore()
	reader := &fakeChainReader{
		counterfactual: common.HexToAddress("0x2222222222222222222222222222222222222222"),
	}
	fb := &fakeBundler{
		reader: reader,
		receipt: &bundler.Receipt{
			Success:         true,
			TransactionHash: common.HexToHash("0xabcd"),
			ActualGasCost:   big.NewInt(90000),
		},
	}
	fp := &fakePaymaster{}

	sg, err := signer.NewOperatorSigner(testKeyHex)
	require.NoError(t, err)

	backends := map[int64]*relay.ChainBackend{
		84532: newTestBackend(reader, fb, fp),
	}

	poller := relay.NewPoller(store, metrics.New(), time.Millisecond, 5)

	svc, err := relay.NewService(store, sg, backends, 84532, poller, metrics.New())
	require.NoError(t, err)

	return &testEnv{
		store:     store,
		reader:    reader,
		bundler:   fb,
		paymaster: fp,
		service:   svc,
	}
}

func TestNewServiceRequiresDefaultChainBackend(t *testing.T) {
	sg, err := signer.NewOperatorSigner(testKeyHex)
	require.NoError(t, err)

	_, err = relay.NewService(newFakeStore(), sg, map[int64]*relay.ChainBackend{}, 84532, nil, metrics.New())
	require.Error(t, err)
}

func TestCreateWalletIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	w1, err := env.service.CreateWallet(ctx, testProject, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "0x2222222222222222222222222222222222222222", w1.Address)
	assert.Equal(t, account.Salt("user-1").String(), w1.Salt)
	assert.False(t, w1.Deployed)

	w2, err := env.service.CreateWallet(ctx, testProject, "user-1")
	require.NoError(t, err)
	assert.Equal(t, w1.ID, w2.ID)
	assert.Equal(t, 1, env.store.createWalletCalls)
}

func TestCreateWalletReturnsRaceWinner(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// A competing request persists its row between the existence check and
	// our insert, so the insert is dropped and the winner's row must come
	// back to the caller.
	var winner *relay.Wallet
	env.store.beforeCreateWallet = func() {
		winner = seedWallet(env.store, testProject, "user-1", common.HexToAddress("0x2222222222222222222222222222222222222222"))
	}

	w, err := env.service.CreateWallet(ctx, testProject, "user-1")
	require.NoError(t, err)
	assert.Equal(t, winner.ID, w.ID)
	assert.Equal(t, winner.Address, w.Address)
	assert.Equal(t, 1, env.store.createWalletCalls)
}

func TestCreateWalletRejectsEmptyUser(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.service.CreateWallet(context.Background(), testProject, "  ")
	require.Error(t, err)

	var validation *relay.ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, "userId", validation.Field)
}

func TestSendTransactionFirstSendDeploysAccount(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	wallet := seedWallet(env.store, testProject, "user-1", common.HexToAddress("0x22"))

	tx, err := env.service.SendTransaction(ctx, testProject, &relay.SendRequest{
		WalletAddress: wallet.Address,
		To:            "0x3333333333333333333333333333333333333333",
		Value:         "1000000000000000",
	})
	require.NoError(t, err)
	assert.Equal(t, relay.StatusPending, tx.Status)
	assert.Equal(t, "1000000000000000", tx.Value)
	assert.False(t, tx.GasSponsored)

	sent := env.bundler.sentOps()
	require.Len(t, sent, 1)

	// undeployed wallet carries init code prefixed with the factory address
	require.NotEmpty(t, sent[0].op.InitCode)
	assert.Equal(t, testFactory.Bytes(), sent[0].op.InitCode[:20])

	// estimation ran with the dummy signature, submission with a real one
	require.Len(t, env.bundler.estimateSigs, 1)
	assert.True(t, bytes.Equal(userop.DummySignature, env.bundler.estimateSigs[0]))
	require.Len(t, sent[0].op.Signature, 65)
	assert.False(t, bytes.Equal(userop.DummySignature, sent[0].op.Signature))

	// deployment recorded optimistically
	assert.True(t, env.store.wallets[testProject+"|user-1"].Deployed)

	// the detached poller drives the record to success
	require.Eventually(t, func() bool {
		stored := env.store.transaction(tx.ID)
		return stored != nil && stored.Status == relay.StatusSuccess
	}, time.Second, 5*time.Millisecond)

	stored := env.store.transaction(tx.ID)
	assert.Equal(t, "0.00000000000009", stored.GasCost.String)
	assert.True(t, stored.ChainHash.Valid)
}

func TestSendTransactionDeployedWalletOmitsInitCode(t *testing.T) {
	env := newTestEnv(t)
	env.reader.deployed = true
	wallet := seedWallet(env.store, testProject, "user-1", common.HexToAddress("0x22"))
	wallet.Deployed = true

	_, err := env.service.SendTransaction(context.Background(), testProject, &relay.SendRequest{
		WalletAddress: wallet.Address,
		To:            "0x3333333333333333333333333333333333333333",
	})
	require.NoError(t, err)

	sent := env.bundler.sentOps()
	require.Len(t, sent, 1)
	assert.Empty(t, sent[0].op.InitCode)
}

func TestSendTransactionValidation(t *testing.T) {
	env := newTestEnv(t)
	wallet := seedWallet(env.store, testProject, "user-1", common.HexToAddress("0x22"))

	cases := []struct {
		name  string
		req   *relay.SendRequest
		field string
	}{
		{
			"invalid wallet address",
			&relay.SendRequest{WalletAddress: "nope", To: "0x3333333333333333333333333333333333333333"},
			"walletAddress",
		},
		{
			"invalid target",
			&relay.SendRequest{WalletAddress: wallet.Address, To: "0x123"},
			"to",
		},
		{
			"negative value",
			&relay.SendRequest{WalletAddress: wallet.Address, To: "0x3333333333333333333333333333333333333333", Value: "-5"},
			"value",
		},
		{
			"non-decimal value",
			&relay.SendRequest{WalletAddress: wallet.Address, To: "0x3333333333333333333333333333333333333333", Value: "0x10"},
			"value",
		},
		{
			"invalid data",
			&relay.SendRequest{WalletAddress: wallet.Address, To: "0x3333333333333333333333333333333333333333", Data: "zz"},
			"data",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.service.SendTransaction(context.Background(), testProject, tc.req)
			require.Error(t, err)

			var validation *relay.ValidationError
			require.ErrorAs(t, err, &validation)
			assert.Equal(t, tc.field, validation.Field)
		})
	}

	// nothing reached the bundler
	assert.Empty(t, env.bundler.sentOps())
	assert.Empty(t, env.bundler.estimateSigs)
}

func TestSendTransactionUnknownWallet(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.service.SendTransaction(context.Background(), testProject, &relay.SendRequest{
		WalletAddress: "0x4444444444444444444444444444444444444444",
		To:            "0x3333333333333333333333333333333333333333",
	})
	require.ErrorIs(t, err, relay.ErrWalletNotFound)
}

func TestSendTransactionUnsupportedChain(t *testing.T) {
	env := newTestEnv(t)
	wallet := seedWallet(env.store, testProject, "user-1", common.HexToAddress("0x22"))
	wallet.ChainID = 999

	_, err := env.service.SendTransaction(context.Background(), testProject, &relay.SendRequest{
		WalletAddress: wallet.Address,
		To:            "0x3333333333333333333333333333333333333333",
	})
	require.ErrorIs(t, err, relay.ErrChainNotSupported)
}

func TestSendBatchBounds(t *testing.T) {
	env := newTestEnv(t)
	wallet := seedWallet(env.store, testProject, "user-1", common.HexToAddress("0x22"))

	_, err := env.service.SendBatch(context.Background(), testProject, &relay.BatchRequest{
		WalletAddress: wallet.Address,
	})
	var validation *relay.ValidationError
	require.ErrorAs(t, err, &validation)

	calls := make([]relay.Call, relay.MaxBatchCalls+1)
	for i := range calls {
		calls[i] = relay.Call{To: "0x3333333333333333333333333333333333333333"}
	}
	_, err = env.service.SendBatch(context.Background(), testProject, &relay.BatchRequest{
		WalletAddress: wallet.Address,
		Calls:         calls,
	})
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, "calls", validation.Field)
}

func TestSendBatchAggregatesValue(t *testing.T) {
	env := newTestEnv(t)
	wallet := seedWallet(env.store, testProject, "user-1", common.HexToAddress("0x22"))

	tx, err := env.service.SendBatch(context.Background(), testProject, &relay.BatchRequest{
		WalletAddress: wallet.Address,
		Calls: []relay.Call{
			{To: "0x3333333333333333333333333333333333333333", Value: "100"},
			{To: "0x4444444444444444444444444444444444444444", Value: "250"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "350", tx.Value)
	assert.Equal(t, "0x3333333333333333333333333333333333333333", tx.To)
}

func TestSendBatchNamesOffendingCall(t *testing.T) {
	env := newTestEnv(t)
	wallet := seedWallet(env.store, testProject, "user-1", common.HexToAddress("0x22"))

	_, err := env.service.SendBatch(context.Background(), testProject, &relay.BatchRequest{
		WalletAddress: wallet.Address,
		Calls: []relay.Call{
			{To: "0x3333333333333333333333333333333333333333"},
			{To: "broken"},
		},
	})
	var validation *relay.ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, "calls[1].to", validation.Field)
}

func TestSponsoredSendUsesPaymaster(t *testing.T) {
	env := newTestEnv(t)
	env.paymaster.sponsorship = &paymaster.Sponsorship{
		PaymasterAndData:     common.FromHex("0xdeadbeef"),
		CallGasLimit:         big.NewInt(120000),
		VerificationGasLimit: big.NewInt(180000),
		PreVerificationGas:   big.NewInt(60000),
	}
	wallet := seedWallet(env.store, testProject, "user-1", common.HexToAddress("0x22"))

	tx, err := env.service.SendTransaction(context.Background(), testProject, &relay.SendRequest{
		WalletAddress: wallet.Address,
		To:            "0x3333333333333333333333333333333333333333",
		Sponsored:     true,
	})
	require.NoError(t, err)
	assert.True(t, tx.GasSponsored)
	assert.Equal(t, 1, env.paymaster.calls)

	sent := env.bundler.sentOps()
	require.Len(t, sent, 1)
	assert.NotEmpty(t, sent[0].op.PaymasterAndData)
	// paymaster gas supersedes the bundler estimate
	assert.Equal(t, int64(120000), sent[0].op.CallGasLimit.Int64())
}

func TestSponsorshipFailureAbortsBeforeSubmit(t *testing.T) {
	env := newTestEnv(t)
	env.paymaster.err = assert.AnError
	wallet := seedWallet(env.store, testProject, "user-1", common.HexToAddress("0x22"))

	_, err := env.service.SendTransaction(context.Background(), testProject, &relay.SendRequest{
		WalletAddress: wallet.Address,
		To:            "0x3333333333333333333333333333333333333333",
		Sponsored:     true,
	})
	require.Error(t, err)

	var sponsorship *relay.SponsorshipError
	require.ErrorAs(t, err, &sponsorship)

	// no silent downgrade to an unsponsored send
	assert.Empty(t, env.bundler.sentOps())
	assert.Empty(t, env.store.transactions)
}

func TestBundlerFailureIsUpstreamError(t *testing.T) {
	env := newTestEnv(t)
	env.bundler.sendErr = assert.AnError
	wallet := seedWallet(env.store, testProject, "user-1", common.HexToAddress("0x22"))

	_, err := env.service.SendTransaction(context.Background(), testProject, &relay.SendRequest{
		WalletAddress: wallet.Address,
		To:            "0x3333333333333333333333333333333333333333",
	})
	require.Error(t, err)

	var upstream *relay.UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, "bundler", upstream.Service)
	assert.Empty(t, env.store.transactions)
}

func TestPersistenceFailureAfterSubmit(t *testing.T) {
	env := newTestEnv(t)
	env.store.createTxErr = assert.AnError
	wallet := seedWallet(env.store, testProject, "user-1", common.HexToAddress("0x22"))

	_, err := env.service.SendTransaction(context.Background(), testProject, &relay.SendRequest{
		WalletAddress: wallet.Address,
		To:            "0x3333333333333333333333333333333333333333",
	})
	require.Error(t, err)

	// the operation went out; the error must say so and carry the hash
	var persistence *relay.PersistenceError
	require.ErrorAs(t, err, &persistence)
	sent := env.bundler.sentOps()
	require.Len(t, sent, 1)
	assert.Equal(t, sent[0].hash.Hex(), persistence.OpHash)
}

func TestConcurrentSendsSerializePerWallet(t *testing.T) {
	env := newTestEnv(t)
	env.reader.deployed = true
	wallet := seedWallet(env.store, testProject, "user-1", common.HexToAddress("0x22"))
	wallet.Deployed = true

	const sends = 4

	var wg sync.WaitGroup
	errs := make([]error, sends)
	for i := 0; i < sends; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = env.service.SendTransaction(context.Background(), testProject, &relay.SendRequest{
				WalletAddress: wallet.Address,
				To:            "0x3333333333333333333333333333333333333333",
			})
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}

	// each operation observed a fresh nonce
	seen := map[int64]bool{}
	for _, s := range env.bundler.sentOps() {
		nonce := s.op.Nonce.Int64()
		assert.False(t, seen[nonce], "nonce %d used twice", nonce)
		seen[nonce] = true
	}
	assert.Len(t, seen, sends)
}

func TestGetTransactionValidatesHash(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.service.GetTransaction(context.Background(), testProject, "not-a-hash")
	var validation *relay.ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, "hash", validation.Field)
}

func TestListTransactionsValidatesWalletFilter(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.service.ListTransactions(context.Background(), testProject, "nope")
	var validation *relay.ValidationError
	require.ErrorAs(t, err, &validation)

	txs, err := env.service.ListTransactions(context.Background(), testProject, "")
	require.NoError(t, err)
	assert.Empty(t, txs)
}

func TestResumePendingRestartsConfirmationTracking(t *testing.T) {
	env := newTestEnv(t)

	tracked := seedPendingTransaction(env.store)

	orphaned := seedPendingTransaction(env.store)
	orphaned.ChainID = 11155420

	resumed, err := env.service.ResumePending(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, resumed)

	require.Eventually(t, func() bool {
		return env.store.transaction(tracked.ID).Status == relay.StatusSuccess
	}, time.Second, 5*time.Millisecond)

	assert.Equal(t, relay.StatusPending, env.store.transaction(orphaned.ID).Status)
}
