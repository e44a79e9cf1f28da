package coordinator_test

import (
	"crypto/rand"
	"path/filepath"
	"sync"
	"time"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/catalogfi/blockchain/testutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/intentswaps/swapd/chain"
	"github.com/intentswaps/swapd/commit"
	"github.com/intentswaps/swapd/coordinator"
	"github.com/intentswaps/swapd/ledger"
	"github.com/intentswaps/swapd/mock"
	"github.com/intentswaps/swapd/model"
	"github.com/intentswaps/swapd/store"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// clock is an adjustable time source, tests move it forward to trigger expiry.
type clock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock() *clock {
	return &clock{now: time.Now()}
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type testEnv struct {
	coordinator *coordinator.Coordinator
	btcAdapter  *mock.Adapter
	evmAdapter  *mock.Adapter
	ledger      ledger.Ledger
	clock       *clock
	committer   commit.Committer
}

func newTestEnv() *testEnv {
	logger, err := zap.NewDevelopment()
	Expect(err).Should(BeNil())

	orders, err := store.NewStore(sqlite.Open(filepath.Join(GinkgoT().TempDir(), "swapd.db")), &gorm.Config{})
	Expect(err).Should(BeNil())

	btcAdapter := mock.NewAdapter()
	btcAdapter.FuncCustodialAddress = func() string { return "custodial-btc" }
	evmAdapter := mock.NewAdapter()
	evmAdapter.FuncCustodialAddress = func() string { return "custodial-evm" }

	legs := ledger.NewInMemLedger()
	clk := newClock()
	committer := commit.NewSHA256()

	coord := coordinator.New(
		logger,
		orders,
		chain.Registry{
			model.FamilyBitcoin: btcAdapter,
			model.FamilyEVM:     evmAdapter,
		},
		legs,
		committer,
		coordinator.WithClock(clk.Now),
	)
	return &testEnv{
		coordinator: coord,
		btcAdapter:  btcAdapter,
		evmAdapter:  evmAdapter,
		ledger:      legs,
		clock:       clk,
		committer:   committer,
	}
}

func randomBtcAddress() string {
	addr, err := testutil.RandomBtcAddressP2PKH(&chaincfg.RegressionNetParams)
	Expect(err).Should(BeNil())
	return addr.EncodeAddress()
}

func randomEvmAddress() string {
	key, err := crypto.GenerateKey()
	Expect(err).Should(BeNil())
	return crypto.PubkeyToAddress(key.PublicKey).Hex()
}

func randomSecret() []byte {
	secret := make([]byte, 32)
	_, err := rand.Read(secret)
	Expect(err).Should(BeNil())
	return secret
}

// newOrderRequest is a btc -> evm native swap matching the common test shape,
// 100000 sats for 2000000 wei with a one hour deadline.
func newOrderRequest(secretHash string, addrs model.Addresses) coordinator.CreateOrderRequest {
	return coordinator.CreateOrderRequest{
		FromAsset:        model.NewNative(model.BitcoinRegtest),
		ToAsset:          model.NewNative(model.EthereumLocalnet),
		FromAmount:       100000,
		ToAmount:         2000000,
		SecretHash:       secretHash,
		Timeout:          time.Hour,
		ReceiveAddresses: addrs,
	}
}
