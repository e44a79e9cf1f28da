package swapd

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"math/big"
	"os"
	"time"

	"github.com/catalogfi/blockchain/btc"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/fatih/color"
	"github.com/intentswaps/swapd/chain"
	btcadapter "github.com/intentswaps/swapd/chain/btc"
	evmadapter "github.com/intentswaps/swapd/chain/evm"
	"github.com/intentswaps/swapd/commit"
	"github.com/intentswaps/swapd/coordinator"
	"github.com/intentswaps/swapd/daemon/rpc"
	"github.com/intentswaps/swapd/daemon/types"
	"github.com/intentswaps/swapd/ledger"
	"github.com/intentswaps/swapd/model"
	"github.com/intentswaps/swapd/store"
	"github.com/intentswaps/swapd/wallet"
	"github.com/spf13/cobra"
	"github.com/tyler-smith/go-bip39"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type Config struct {
	BtcChain   model.Chain `json:"btcChain"`
	EthChain   model.Chain `json:"ethChain"`
	BtcIndexer string      `json:"btcIndexer"`
	EthURL     string      `json:"ethUrl"`
	EthChainID int64       `json:"ethChainId"`
	FeeTier    string      `json:"feeTier"`
	FeeRate    int         `json:"feeRate"`

	Postgres string `json:"postgres"`
	RedisURL string `json:"redisUrl"`

	RPCAddr           string            `json:"rpcAddr"`
	Users             map[string]string `json:"users"`
	MinTimeoutSeconds uint64            `json:"minTimeoutSeconds"`
}

func Run() error {
	var cmd = &cobra.Command{
		Use: "swapd - custodial cross-chain swap coordinator",
		Run: func(c *cobra.Command, args []string) {
			c.HelpFunc()(c, args)
		},
		DisableAutoGenTag: true,
	}

	var configPath string
	start := &cobra.Command{
		Use:   "start",
		Short: "Start the coordinator daemon",
		RunE: func(c *cobra.Command, args []string) error {
			return Start(LoadConfiguration(configPath))
		},
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return err
	}
	start.Flags().StringVar(&configPath, "config", fmt.Sprintf("%s/.swapd/config.json", homeDir), "path to the config file")

	cmd.AddCommand(start)
	return cmd.Execute()
}

func Start(config Config) error {
	logger, err := zap.NewDevelopment()
	if err != nil {
		return err
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return err
	}
	mnemonic, err := readMnemonic(homeDir)
	if err != nil {
		return err
	}
	keys, err := wallet.FromMnemonic(mnemonic)
	if err != nil {
		return err
	}

	// Bitcoin adapter
	btcKey, err := keys.BtcKey()
	if err != nil {
		return err
	}
	indexer := btc.NewElectrsIndexerClient(logger, config.BtcIndexer, btc.DefaultRetryInterval)
	feeRate := config.FeeRate
	if feeRate == 0 {
		feeRate = 10
	}
	estimator := btc.NewFixFeeEstimator(feeRate)
	btcAdapter, err := btcadapter.New(logger, config.BtcChain.Params(), indexer, estimator, config.FeeTier, btcKey)
	if err != nil {
		return err
	}

	// EVM adapter
	ethKey, err := keys.EthKey()
	if err != nil {
		return err
	}
	ethClient, err := ethclient.Dial(config.EthURL)
	if err != nil {
		return err
	}
	evmAdapter, err := evmadapter.New(logger, ethClient, ethKey, big.NewInt(config.EthChainID))
	if err != nil {
		return err
	}

	chains := chain.Registry{
		model.FamilyBitcoin: btcAdapter,
		model.FamilyEVM:     evmAdapter,
	}

	// Order store, sqlite unless postgres is configured.
	var dialector gorm.Dialector
	if config.Postgres != "" {
		dialector = postgres.Open(config.Postgres)
	} else {
		dialector = sqlite.Open(fmt.Sprintf("%s/.swapd/swapd.db", homeDir))
	}
	orders, err := store.NewStore(dialector, &gorm.Config{})
	if err != nil {
		return err
	}

	// Leg ledger, redis unless unset.
	var legs ledger.Ledger
	if config.RedisURL != "" {
		legs, err = ledger.NewRedisLedger(config.RedisURL)
		if err != nil {
			return err
		}
	} else {
		legs = ledger.NewInMemLedger()
	}

	opts := []coordinator.Option{}
	if config.MinTimeoutSeconds != 0 {
		opts = append(opts, coordinator.WithMinTimeout(time.Duration(config.MinTimeoutSeconds)*time.Second))
	}
	coord := coordinator.New(logger, orders, chains, legs, commit.NewSHA256(), opts...)

	custodial := chains.CustodialAddresses()
	color.Green("custodial bitcoin address: %v", custodial.Btc)
	color.Green("custodial evm address:     %v", custodial.Evm)

	addr := config.RPCAddr
	if addr == "" {
		addr = ":8080"
	}
	server := rpc.NewRpcServer(types.CoreConfig{
		Coordinator: coord,
		Logger:      logger,
	}, config.Users)
	return server.Run(addr)
}

func LoadConfiguration(file string) Config {
	var config Config
	configFile, err := os.ReadFile(file)
	if err != nil {
		return Config{}
	}
	if err := json.Unmarshal(configFile, &config); err != nil {
		return Config{}
	}
	return config
}

func readMnemonic(homeDir string) (string, error) {
	data, err := os.ReadFile(fmt.Sprintf("%v/.swapd/MNEMONIC", homeDir))
	if err == nil {
		return string(data), nil
	}

	entropy := [32]byte{}
	if _, err := rand.Read(entropy[:]); err != nil {
		return "", err
	}
	mnemonic, err := bip39.NewMnemonic(entropy[:])
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(fmt.Sprintf("%v/.swapd", homeDir), 0700); err != nil {
		return "", err
	}
	if err := os.WriteFile(fmt.Sprintf("%v/.swapd/MNEMONIC", homeDir), []byte(mnemonic), 0600); err != nil {
		return "", err
	}
	return mnemonic, nil
}
