package rpcclient_test

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/catalogfi/blockchain/testutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/intentswaps/swapd/chain"
	"github.com/intentswaps/swapd/commit"
	"github.com/intentswaps/swapd/coordinator"
	jsonrpc "github.com/intentswaps/swapd/daemon/rpc"
	"github.com/intentswaps/swapd/daemon/types"
	"github.com/intentswaps/swapd/ledger"
	"github.com/intentswaps/swapd/mock"
	"github.com/intentswaps/swapd/model"
	"github.com/intentswaps/swapd/rpcclient"
	"github.com/intentswaps/swapd/store"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var (
	creator  rpcclient.Client
	resolver rpcclient.Client
)

var _ = BeforeSuite(func() {
	StartServer()
	time.Sleep(3 * time.Second) // await server to start
	creator = rpcclient.NewClient("alice", "alicepass", "http", "127.0.0.1:3042")
	resolver = rpcclient.NewClient("bob", "bobpass", "http", "127.0.0.1:3042")
})

var _ = Describe("Driving a swap over the rpc surface", func() {
	It("should walk an order from creation to completion", func() {
		secret := make([]byte, 32)
		_, err := rand.Read(secret)
		Expect(err).To(BeNil())
		hash := sha256.Sum256(secret)

		creatorBtc, err := testutil.RandomBtcAddressP2PKH(&chaincfg.RegressionNetParams)
		Expect(err).To(BeNil())
		resolverBtc, err := testutil.RandomBtcAddressP2PKH(&chaincfg.RegressionNetParams)
		Expect(err).To(BeNil())
		creatorKey, err := crypto.GenerateKey()
		Expect(err).To(BeNil())
		resolverKey, err := crypto.GenerateKey()
		Expect(err).To(BeNil())

		By("creating the order")
		resp, err := creator.CreateOrder(types.RequestCreate{
			FromAsset:      model.NewNative(model.BitcoinRegtest),
			ToAsset:        model.NewNative(model.EthereumLocalnet),
			FromAmount:     100000,
			ToAmount:       2000000,
			SecretHash:     hex.EncodeToString(hash[:]),
			TimeoutSeconds: 3600,
			BtcAddress:     creatorBtc.EncodeAddress(),
			EvmAddress:     crypto.PubkeyToAddress(creatorKey.PublicKey).Hex(),
		})
		Expect(err).To(BeNil())

		var created types.ResponseCreate
		Expect(json.Unmarshal(resp, &created)).To(Succeed())
		Expect(created.OrderID).NotTo(BeZero())
		Expect(created.CustodialAddresses.Btc).NotTo(BeEmpty())

		By("confirming the creator deposit")
		_, err = creator.ConfirmDeposit(types.RequestConfirmDeposit{
			OrderID: created.OrderID,
			Txid:    mock.RandomTxid(),
		})
		Expect(err).To(BeNil())

		By("listing it as pending")
		resp, err = resolver.GetPendingOrders()
		Expect(err).To(BeNil())
		var pending []model.Order
		Expect(json.Unmarshal(resp, &pending)).To(Succeed())
		Expect(pending).NotTo(BeEmpty())

		By("accepting as the resolver")
		_, err = resolver.AcceptOrder(types.RequestAccept{
			OrderID:    created.OrderID,
			BtcAddress: resolverBtc.EncodeAddress(),
			EvmAddress: crypto.PubkeyToAddress(resolverKey.PublicKey).Hex(),
		})
		Expect(err).To(BeNil())

		By("confirming the resolver deposit")
		_, err = resolver.ConfirmResolverDeposit(types.RequestConfirmDeposit{
			OrderID: created.OrderID,
			Txid:    mock.RandomTxid(),
		})
		Expect(err).To(BeNil())

		By("revealing the secret")
		_, err = creator.RevealSecret(types.RequestRevealSecret{
			OrderID: created.OrderID,
			Secret:  hex.EncodeToString(secret),
		})
		Expect(err).To(BeNil())

		resp, err = creator.GetOrder(types.RequestOrderID{OrderID: created.OrderID})
		Expect(err).To(BeNil())
		var order model.Order
		Expect(json.Unmarshal(resp, &order)).To(Succeed())
		Expect(order.Status).To(Equal(model.Completed))
	})

	It("should reject bad credentials", func() {
		intruder := rpcclient.NewClient("alice", "wrongpass", "http", "127.0.0.1:3042")
		_, err := intruder.GetMyOrders()
		Expect(err).ToNot(BeNil())
	})
})

func StartServer() {
	go func() {
		defer GinkgoRecover()

		logger, err := zap.NewDevelopment()
		if err != nil {
			panic(err)
		}

		dir, err := os.MkdirTemp("", "swapd-rpc-test")
		if err != nil {
			panic(err)
		}
		orders, err := store.NewStore(sqlite.Open(filepath.Join(dir, "swapd.db")), &gorm.Config{})
		if err != nil {
			panic(err)
		}

		coord := coordinator.New(
			logger,
			orders,
			chain.Registry{
				model.FamilyBitcoin: mock.NewAdapter(),
				model.FamilyEVM:     mock.NewAdapter(),
			},
			ledger.NewInMemLedger(),
			commit.NewSHA256(),
		)

		s := jsonrpc.NewRpcServer(types.CoreConfig{
			Coordinator: coord,
			Logger:      logger,
		}, map[string]string{"alice": "alicepass", "bob": "bobpass"})
		if err := s.Run("127.0.0.1:3042"); err != nil {
			panic(err)
		}
	}()
}
