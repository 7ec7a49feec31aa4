package relay

import (
	"context"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github/smartkit/relay/internal/metrics"
	"github/smartkit/relay/internal/relay/account"
	"github/smartkit/relay/internal/relay/signer"
	"github/smartkit/relay/internal/relay/userop"
	"github/smartkit/relay/internal/util"
)

// Service is the relay pipeline: wallet derivation, UserOperation
// construction, signing, submission, and confirmation tracking.
type Service interface {
	// CreateWallet derives the counterfactual wallet for an end user on the
	// default chain. Idempotent per (project, owner user id); a repeated call
	// returns the existing wallet.
	CreateWallet(ctx context.Context, projectID, ownerUserID string) (*Wallet, error)

	GetWallet(ctx context.Context, projectID, address string) (*Wallet, error)
	ListWallets(ctx context.Context, projectID string) ([]*Wallet, error)

	// SendTransaction relays a single execute call through the wallet.
	// Returns once the bundler accepted the operation; confirmation continues
	// in the background.
	SendTransaction(ctx context.Context, projectID string, req *SendRequest) (*Transaction, error)

	// SendBatch relays 1 to MaxBatchCalls calls atomically in one operation.
	SendBatch(ctx context.Context, projectID string, req *BatchRequest) (*Transaction, error)

	GetTransaction(ctx context.Context, projectID, opHash string) (*Transaction, error)
	ListTransactions(ctx context.Context, projectID, walletAddress string) ([]*Transaction, error)

	GetStats(ctx context.Context, projectID string) (*Stats, error)

	// ResumePending restarts confirmation tracking for every non-terminal
	// transaction, called once at startup. Returns the number of resumed
	// watches.
	ResumePending(ctx context.Context) (int, error)
}

type service struct {
	store          Store
	signer         signer.Signer
	backends       map[int64]*ChainBackend
	defaultChainID int64
	poller         *Poller
	metrics        *metrics.Service
	nonceLocks     *addressLocks
}

// NewService wires the pipeline together. backends must contain the default
// chain.
//
//nolint:ireturn // Returning the interface is intentional for dependency injection
func NewService(store Store, sg signer.Signer, backends map[int64]*ChainBackend, defaultChainID int64, poller *Poller, m *metrics.Service) (Service, error) {
	if _, ok := backends[defaultChainID]; !ok {
		return nil, errors.Errorf("no backend configured for default chain %d", defaultChainID)
	}

	return &service{
		store:          store,
		signer:         sg,
		backends:       backends,
		defaultChainID: defaultChainID,
		poller:         poller,
		metrics:        m,
		nonceLocks:     newAddressLocks(),
	}, nil
}

func (s *service) backendFor(chainID int64) (*ChainBackend, error) {
	b, ok := s.backends[chainID]
	if !ok {
		return nil, errors.Wrapf(ErrChainNotSupported, "chain %d", chainID)
	}
	return b, nil
}

func (s *service) CreateWallet(ctx context.Context, projectID, ownerUserID string) (*Wallet, error) {
	if strings.TrimSpace(ownerUserID) == "" {
		return nil, NewValidationError("userId", "must not be empty")
	}

	existing, err := s.store.GetWalletByOwner(ctx, projectID, ownerUserID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrWalletNotFound) {
		return nil, errors.Wrap(err, "failed to look up existing wallet")
	}

	backend, err := s.backendFor(s.defaultChainID)
	if err != nil {
		return nil, err
	}

	salt := account.Salt(ownerUserID)

	address, err := backend.Deriver.CounterfactualAddress(ctx, salt)
	if err != nil {
		return nil, &UpstreamError{Service: "chain", Err: err}
	}

	wallet := &Wallet{
		ID:          uuid.New().String(),
		ProjectID:   projectID,
		OwnerUserID: ownerUserID,
		Address:     strings.ToLower(address.Hex()),
		Salt:        salt.String(),
		ChainID:     s.defaultChainID,
		Deployed:    false,
		CreatedAt:   time.Now(),
	}

	if err := s.store.CreateWallet(ctx, wallet); err != nil {
		return nil, errors.Wrap(err, "failed to persist wallet")
	}

	// The insert is a no-op when a concurrent request for the same owner won
	// the race, so read the row back and return whatever actually persisted.
	stored, err := s.store.GetWalletByOwner(ctx, projectID, ownerUserID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read back wallet")
	}

	util.LogFromContext(ctx).Info().
		Str("wallet", stored.Address).
		Int64("chain_id", stored.ChainID).
		Msg("Derived new wallet")

	return stored, nil
}

func (s *service) GetWallet(ctx context.Context, projectID, address string) (*Wallet, error) {
	if !common.IsHexAddress(address) {
		return nil, NewValidationError("address", "not a valid address")
	}
	return s.store.GetWalletByAddress(ctx, projectID, strings.ToLower(address))
}

func (s *service) ListWallets(ctx context.Context, projectID string) ([]*Wallet, error) {
	return s.store.ListWallets(ctx, projectID)
}

func (s *service) SendTransaction(ctx context.Context, projectID string, req *SendRequest) (*Transaction, error) {
	target, value, data, err := parseCall("", Call{To: req.To, Value: req.Value, Data: req.Data})
	if err != nil {
		return nil, err
	}

	wallet, backend, err := s.resolveWallet(ctx, projectID, req.WalletAddress)
	if err != nil {
		return nil, err
	}

	callData, err := account.BuildExecuteCallData(target, value, data)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build execute calldata")
	}

	return s.submit(ctx, wallet, backend, preparedCall{
		to:       strings.ToLower(target.Hex()),
		value:    value.String(),
		callData: callData,
	}, req.Sponsored)
}

func (s *service) SendBatch(ctx context.Context, projectID string, req *BatchRequest) (*Transaction, error) {
	if len(req.Calls) == 0 {
		return nil, NewValidationError("calls", "must contain at least one call")
	}
	if len(req.Calls) > MaxBatchCalls {
		return nil, NewValidationError("calls", "must not contain more than 10 calls")
	}

	targets := make([]common.Address, 0, len(req.Calls))
	values := make([]*big.Int, 0, len(req.Calls))
	datas := make([][]byte, 0, len(req.Calls))

	for i, call := range req.Calls {
		target, value, data, err := parseCall(callFieldPrefix(i), call)
		if err != nil {
			return nil, err
		}
		targets = append(targets, target)
		values = append(values, value)
		datas = append(datas, data)
	}

	wallet, backend, err := s.resolveWallet(ctx, projectID, req.WalletAddress)
	if err != nil {
		return nil, err
	}

	callData, err := account.BuildExecuteBatchCallData(targets, values, datas)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build executeBatch calldata")
	}

	total := new(big.Int)
	for _, v := range values {
		total.Add(total, v)
	}

	return s.submit(ctx, wallet, backend, preparedCall{
		to:       strings.ToLower(targets[0].Hex()),
		value:    total.String(),
		callData: callData,
	}, req.Sponsored)
}

func (s *service) GetTransaction(ctx context.Context, projectID, opHash string) (*Transaction, error) {
	if len(opHash) != 2+2*common.HashLength || !strings.HasPrefix(opHash, "0x") {
		return nil, NewValidationError("hash", "not a valid operation hash")
	}
	return s.store.GetTransactionByOpHash(ctx, projectID, strings.ToLower(opHash))
}

func (s *service) ListTransactions(ctx context.Context, projectID, walletAddress string) ([]*Transaction, error) {
	if walletAddress != "" {
		if !common.IsHexAddress(walletAddress) {
			return nil, NewValidationError("wallet", "not a valid address")
		}
		walletAddress = strings.ToLower(walletAddress)
	}
	return s.store.ListTransactions(ctx, projectID, walletAddress)
}

func (s *service) GetStats(ctx context.Context, projectID string) (*Stats, error) {
	return s.store.Stats(ctx, projectID)
}

func (s *service) ResumePending(ctx context.Context) (int, error) {
	txs, err := s.store.ListUnfinishedTransactions(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "failed to list unfinished transactions")
	}

	log := util.LogFromContext(ctx)

	resumed := 0
	for _, tx := range txs {
		backend, ok := s.backends[tx.ChainID]
		if !ok {
			log.Warn().
				Str("transaction_id", tx.ID).
				Int64("chain_id", tx.ChainID).
				Msg("Cannot resume transaction on unconfigured chain")
			continue
		}
		s.poller.Watch(tx.ID, common.HexToHash(tx.OpHash), backend.Bundler)
		resumed++
	}

	if resumed > 0 {
		log.Info().Int("count", resumed).Msg("Resumed confirmation tracking")
	}

	return resumed, nil
}

// resolveWallet loads the sender wallet and the backend of its chain.
func (s *service) resolveWallet(ctx context.Context, projectID, walletAddress string) (*Wallet, *ChainBackend, error) {
	if !common.IsHexAddress(walletAddress) {
		return nil, nil, NewValidationError("walletAddress", "not a valid address")
	}

	wallet, err := s.store.GetWalletByAddress(ctx, projectID, strings.ToLower(walletAddress))
	if err != nil {
		return nil, nil, err
	}

	backend, err := s.backendFor(wallet.ChainID)
	if err != nil {
		return nil, nil, err
	}

	return wallet, backend, nil
}

// preparedCall is the validated and encoded payload of one send, plus the
// display fields recorded with the transaction.
type preparedCall struct {
	to       string
	value    string // decimal wei
	callData []byte
}

// submit runs the construction pipeline for one operation: nonce and init
// code under the wallet lock, gas estimation, optional sponsorship, hashing,
// signing, and broadcast. Record creation and confirmation tracking follow
// the broadcast.
func (s *service) submit(ctx context.Context, wallet *Wallet, backend *ChainBackend, call preparedCall, sponsored bool) (*Transaction, error) {
	log := util.LogFromContext(ctx).With().
		Str("wallet", wallet.Address).
		Int64("chain_id", wallet.ChainID).
		Bool("sponsored", sponsored).
		Logger()

	sender := common.HexToAddress(wallet.Address)

	// Serialize per wallet so two concurrent sends cannot race on the same
	// entry point nonce.
	release := s.nonceLocks.acquire(wallet.Address)
	defer release()

	deployed, err := backend.Deriver.IsDeployed(ctx, sender)
	if err != nil {
		return nil, &UpstreamError{Service: "chain", Err: err}
	}

	var initCode []byte
	if !deployed {
		salt, ok := new(big.Int).SetString(wallet.Salt, 10)
		if !ok {
			return nil, errors.Errorf("wallet %s has malformed salt", wallet.Address)
		}
		initCode, err = backend.Deriver.BuildInitCode(salt)
		if err != nil {
			return nil, errors.Wrap(err, "failed to build init code")
		}
	}

	nonce, err := backend.Deriver.GetNonce(ctx, sender)
	if err != nil {
		return nil, &UpstreamError{Service: "chain", Err: err}
	}

	maxFee, tip := estimateFees(ctx, backend.Fees)

	op := &userop.UserOperation{
		Sender:               sender,
		Nonce:                nonce,
		InitCode:             initCode,
		CallData:             call.callData,
		MaxFeePerGas:         maxFee,
		MaxPriorityFeePerGas: tip,
		Signature:            userop.DummySignature,
	}

	estimate, err := backend.Bundler.EstimateUserOperationGas(ctx, op)
	if err != nil {
		return nil, &UpstreamError{Service: "bundler", Err: err}
	}
	op.CallGasLimit = estimate.CallGasLimit
	op.VerificationGasLimit = estimate.VerificationGasLimit
	op.PreVerificationGas = estimate.PreVerificationGas

	if sponsored {
		sponsorship, err := backend.Paymaster.SponsorUserOperation(ctx, op)
		if err != nil {
			return nil, &SponsorshipError{Err: err}
		}

		op.PaymasterAndData = sponsorship.PaymasterAndData
		if sponsorship.CallGasLimit != nil {
			op.CallGasLimit = sponsorship.CallGasLimit
		}
		if sponsorship.VerificationGasLimit != nil {
			op.VerificationGasLimit = sponsorship.VerificationGasLimit
		}
		if sponsorship.PreVerificationGas != nil {
			op.PreVerificationGas = sponsorship.PreVerificationGas
		}
	}

	opHash := op.Hash(backend.EntryPoint, backend.ChainID)

	sig, err := s.signer.SignHash(opHash)
	if err != nil {
		return nil, errors.Wrap(err, "failed to sign user operation")
	}
	op.Signature = sig

	submittedHash, err := backend.Bundler.SendUserOperation(ctx, op)
	if err != nil {
		return nil, &UpstreamError{Service: "bundler", Err: err}
	}

	s.metrics.OperationsSubmitted.WithLabelValues(chainIDLabel(wallet.ChainID)).Inc()
	if sponsored {
		s.metrics.SponsoredOperations.Inc()
	}

	now := time.Now()
	tx := &Transaction{
		ID:            uuid.New().String(),
		ProjectID:     wallet.ProjectID,
		WalletAddress: wallet.Address,
		OpHash:        strings.ToLower(submittedHash.Hex()),
		To:            call.to,
		Value:         call.value,
		CallData:      hexutil.Encode(call.callData),
		Status:        StatusPending,
		ChainID:       wallet.ChainID,
		GasSponsored:  sponsored,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.store.CreateTransaction(ctx, tx); err != nil {
		// The operation is already in flight; surface this distinctly so the
		// caller can reconcile instead of resubmitting.
		log.Error().Err(err).Str("op_hash", tx.OpHash).Msg("Operation broadcast but record write failed")
		return nil, &PersistenceError{OpHash: tx.OpHash, Err: err}
	}

	if !deployed {
		// The init code is part of the broadcast operation, deployment is in
		// flight. Recorded optimistically; a failed deployment surfaces as a
		// failed first transaction.
		if err := s.store.MarkWalletDeployed(ctx, wallet.ID); err != nil {
			log.Error().Err(err).Msg("Failed to record wallet deployment")
		}
	}

	s.poller.Watch(tx.ID, submittedHash, backend.Bundler)

	log.Info().
		Str("op_hash", tx.OpHash).
		Str("nonce", nonce.String()).
		Bool("deploys_account", !deployed).
		Msg("UserOperation submitted")

	return tx, nil
}

func callFieldPrefix(i int) string {
	return "calls[" + strconv.Itoa(i) + "]."
}

// parseCall validates one call's address, value, and data fields. prefix
// namespaces the reported field for batch entries.
func parseCall(prefix string, call Call) (common.Address, *big.Int, []byte, error) {
	if !common.IsHexAddress(call.To) {
		return common.Address{}, nil, nil, NewValidationError(prefix+"to", "not a valid address")
	}
	target := common.HexToAddress(call.To)

	value := new(big.Int)
	if call.Value != "" {
		parsed, ok := value.SetString(call.Value, 10)
		if !ok {
			return common.Address{}, nil, nil, NewValidationError(prefix+"value", "not a decimal wei amount")
		}
		if parsed.Sign() < 0 {
			return common.Address{}, nil, nil, NewValidationError(prefix+"value", "must not be negative")
		}
	}

	var data []byte
	if call.Data != "" && call.Data != "0x" {
		decoded, err := hexutil.Decode(call.Data)
		if err != nil {
			return common.Address{}, nil, nil, NewValidationError(prefix+"data", "not valid hex data")
		}
		data = decoded
	}

	return target, value, data, nil
}
