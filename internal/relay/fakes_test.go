package relay_test

import (
	"context"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/google/uuid"

	"github/smartkit/relay/internal/relay"
	"github/smartkit/relay/internal/relay/account"
	"github/smartkit/relay/internal/relay/bundler"
	"github/smartkit/relay/internal/relay/paymaster"
	"github/smartkit/relay/internal/relay/userop"
)

var (
	testFactory    = common.HexToAddress("0x9406Cc6185a346906296840746125a0E44976454")
	testEntryPoint = common.HexToAddress("0x0000000071727De22E5E9d8BAf0edAc6f37da032")
	testOperator   = common.HexToAddress("0x1111111111111111111111111111111111111111")
)

// fakeStore is an in-memory relay.Store mirroring the status monotonicity of
// the real one.
type fakeStore struct {
	mu           sync.Mutex
	wallets      map[string]*relay.Wallet      // by project|owner
	walletsAddr  map[string]*relay.Wallet      // by project|address
	transactions map[string]*relay.Transaction // by id
	apiKeys      map[string]string             // digest -> project id

	createWalletCalls  int
	beforeCreateWallet func()
	createTxErr        error
	markDeployedErr    error
	receiptErr         error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		wallets:      map[string]*relay.Wallet{},
		walletsAddr:  map[string]*relay.Wallet{},
		transactions: map[string]*relay.Transaction{},
		apiKeys:      map[string]string{},
	}
}

func (f *fakeStore) ResolveAPIKey(_ context.Context, keyDigest string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if id, ok := f.apiKeys[keyDigest]; ok {
		return id, nil
	}
	return "", relay.ErrWalletNotFound
}

func (f *fakeStore) CreateWallet(_ context.Context, w *relay.Wallet) error {
	if f.beforeCreateWallet != nil {
		f.beforeCreateWallet()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createWalletCalls++
	// Mirror the ON CONFLICT DO NOTHING semantics of the real store: the
	// first row per owner wins and later inserts are silently dropped.
	if _, ok := f.wallets[w.ProjectID+"|"+w.OwnerUserID]; ok {
		return nil
	}
	f.wallets[w.ProjectID+"|"+w.OwnerUserID] = w
	f.walletsAddr[w.ProjectID+"|"+w.Address] = w
	return nil
}

func (f *fakeStore) GetWalletByOwner(_ context.Context, projectID, ownerUserID string) (*relay.Wallet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if w, ok := f.wallets[projectID+"|"+ownerUserID]; ok {
		return w, nil
	}
	return nil, relay.ErrWalletNotFound
}

func (f *fakeStore) GetWalletByAddress(_ context.Context, projectID, address string) (*relay.Wallet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if w, ok := f.walletsAddr[projectID+"|"+address]; ok {
		return w, nil
	}
	return nil, relay.ErrWalletNotFound
}

func (f *fakeStore) ListWallets(_ context.Context, projectID string) ([]*relay.Wallet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var res []*relay.Wallet
	for _, w := range f.wallets {
		if w.ProjectID == projectID {
			res = append(res, w)
		}
	}
	return res, nil
}

func (f *fakeStore) MarkWalletDeployed(_ context.Context, walletID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.markDeployedErr != nil {
		return f.markDeployedErr
	}
	for _, w := range f.wallets {
		if w.ID == walletID {
			w.Deployed = true
		}
	}
	return nil
}

func (f *fakeStore) CreateTransaction(_ context.Context, tx *relay.Transaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createTxErr != nil {
		return f.createTxErr
	}
	f.transactions[tx.ID] = tx
	return nil
}

func (f *fakeStore) GetTransactionByOpHash(_ context.Context, projectID, opHash string) (*relay.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, tx := range f.transactions {
		if tx.ProjectID == projectID && tx.OpHash == opHash {
			return tx, nil
		}
	}
	return nil, relay.ErrTransactionNotFound
}

func (f *fakeStore) ListTransactions(_ context.Context, projectID, walletAddress string) ([]*relay.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var res []*relay.Transaction
	for _, tx := range f.transactions {
		if tx.ProjectID != projectID {
			continue
		}
		if walletAddress != "" && tx.WalletAddress != walletAddress {
			continue
		}
		res = append(res, tx)
	}
	return res, nil
}

func (f *fakeStore) ListUnfinishedTransactions(_ context.Context) ([]*relay.Transaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var res []*relay.Transaction
	for _, tx := range f.transactions {
		if !tx.Status.Terminal() {
			res = append(res, tx)
		}
	}
	return res, nil
}

func (f *fakeStore) UpdateTransactionReceipt(_ context.Context, txID string, status relay.Status, chainHash, gasCost string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.receiptErr != nil {
		return f.receiptErr
	}
	tx, ok := f.transactions[txID]
	if !ok || tx.Status.Terminal() {
		return nil
	}
	tx.Status = status
	tx.ChainHash.SetValid(chainHash)
	tx.GasCost.SetValid(gasCost)
	tx.UpdatedAt = time.Now()
	return nil
}

func (f *fakeStore) MarkTransactionFailed(_ context.Context, txID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	tx, ok := f.transactions[txID]
	if !ok || tx.Status.Terminal() {
		return nil
	}
	tx.Status = relay.StatusFailed
	tx.UpdatedAt = time.Now()
	return nil
}

func (f *fakeStore) Stats(_ context.Context, projectID string) (*relay.Stats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stats := &relay.Stats{TotalGasSponsored: "0"}
	for _, w := range f.wallets {
		if w.ProjectID == projectID {
			stats.TotalWallets++
		}
	}
	for _, tx := range f.transactions {
		if tx.ProjectID != projectID {
			continue
		}
		stats.TotalTransactions++
		switch tx.Status {
		case relay.StatusSuccess:
			stats.SuccessfulTxs++
		case relay.StatusFailed:
			stats.FailedTxs++
		default:
			stats.PendingTxs++
		}
	}
	return stats, nil
}

func (f *fakeStore) transaction(txID string) *relay.Transaction {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.transactions[txID]
}

// fakeChainReader answers the deriver's eth_call and eth_getCode requests.
// The entry point nonce advances when the fake bundler accepts an operation.
type fakeChainReader struct {
	mu             sync.Mutex
	counterfactual common.Address
	nonce          int64
	deployed       bool
}

func (f *fakeChainReader) CallContract(_ context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch *msg.To {
	case testFactory:
		return common.LeftPadBytes(f.counterfactual.Bytes(), 32), nil
	case testEntryPoint:
		return common.BigToHash(big.NewInt(f.nonce)).Bytes(), nil
	}
	return nil, nil
}

func (f *fakeChainReader) CodeAt(_ context.Context, _ common.Address, _ *big.Int) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deployed {
		return []byte{0x60, 0x80}, nil
	}
	return nil, nil
}

type fakeFeeSource struct {
	tip     *big.Int
	baseFee *big.Int
	tipErr  error
}

func (f *fakeFeeSource) SuggestGasTipCap(context.Context) (*big.Int, error) {
	return f.tip, f.tipErr
}

func (f *fakeFeeSource) HeaderByNumber(context.Context, *big.Int) (*types.Header, error) {
	return &types.Header{BaseFee: f.baseFee}, nil
}

// sentOp is one operation the fake bundler accepted, with the signature it
// carried at each stage.
type sentOp struct {
	op   userop.UserOperation
	hash common.Hash
}

type fakeBundler struct {
	mu            sync.Mutex
	reader        *fakeChainReader
	estimateSigs  [][]byte
	sent          []sentOp
	estimateErr   error
	sendErr       error
	receipt       *bundler.Receipt
	receiptAfter  int
	receiptLookup int
}

func (f *fakeBundler) EstimateUserOperationGas(_ context.Context, op *userop.UserOperation) (*bundler.GasEstimate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.estimateErr != nil {
		return nil, f.estimateErr
	}
	f.estimateSigs = append(f.estimateSigs, append([]byte(nil), op.Signature...))
	return &bundler.GasEstimate{
		CallGasLimit:         big.NewInt(100000),
		VerificationGasLimit: big.NewInt(150000),
		PreVerificationGas:   big.NewInt(50000),
	}, nil
}

func (f *fakeBundler) SendUserOperation(_ context.Context, op *userop.UserOperation) (common.Hash, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return common.Hash{}, f.sendErr
	}

	hash := op.Hash(testEntryPoint, big.NewInt(84532))
	f.sent = append(f.sent, sentOp{op: *op, hash: hash})

	// inclusion bumps the entry point nonce, and the first inclusion deploys
	if f.reader != nil {
		f.reader.mu.Lock()
		f.reader.nonce++
		f.reader.deployed = true
		f.reader.mu.Unlock()
	}

	return hash, nil
}

func (f *fakeBundler) GetUserOperationReceipt(_ context.Context, _ common.Hash) (*bundler.Receipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.receiptLookup++
	if f.receiptLookup <= f.receiptAfter {
		return nil, nil
	}
	return f.receipt, nil
}

func (f *fakeBundler) Close() {}

func (f *fakeBundler) sentOps() []sentOp {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentOp(nil), f.sent...)
}

type fakePaymaster struct {
	mu          sync.Mutex
	sponsorship *paymaster.Sponsorship
	err         error
	calls       int
}

func (f *fakePaymaster) SponsorUserOperation(_ context.Context, _ *userop.UserOperation) (*paymaster.Sponsorship, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.sponsorship, nil
}

func (f *fakePaymaster) Close() {}

func newTestBackend(reader *fakeChainReader, b *fakeBundler, p *fakePaymaster) *relay.ChainBackend {
	return &relay.ChainBackend{
		ChainID:    big.NewInt(84532),
		Name:       "base-sepolia",
		EntryPoint: testEntryPoint,
		Deriver:    account.NewDeriver(reader, testFactory, testEntryPoint, testOperator),
		Fees:       &fakeFeeSource{tip: big.NewInt(100000000), baseFee: big.NewInt(1000000000)},
		Bundler:    b,
		Paymaster:  p,
	}
}

func seedWallet(store *fakeStore, projectID, owner string, address common.Address) *relay.Wallet {
	w := &relay.Wallet{
		ID:          uuid.New().String(),
		ProjectID:   projectID,
		OwnerUserID: owner,
		Address:     toLowerHex(address),
		Salt:        account.Salt(owner).String(),
		ChainID:     84532,
		CreatedAt:   time.Now(),
	}
	store.wallets[projectID+"|"+owner] = w
	store.walletsAddr[projectID+"|"+w.Address] = w
	return w
}

func toLowerHex(addr common.Address) string {
	return "0x" + common.Bytes2Hex(addr.Bytes())
}
