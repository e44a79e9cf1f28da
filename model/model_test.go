package model_test

import (
	"time"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/catalogfi/blockchain/testutil"
	"github.com/intentswaps/swapd/model"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Chains and assets", func() {
	Context("when classifying chains", func() {
		It("should group chains into families", func() {
			Expect(model.Bitcoin.Family()).Should(Equal(model.FamilyBitcoin))
			Expect(model.BitcoinRegtest.Family()).Should(Equal(model.FamilyBitcoin))
			Expect(model.Ethereum.Family()).Should(Equal(model.FamilyEVM))
			Expect(model.EthereumLocalnet.Family()).Should(Equal(model.FamilyEVM))
		})

		It("should reject unknown chains", func() {
			Expect(model.Chain("solana").Valid()).Should(BeFalse())
			Expect(model.Bitcoin.Valid()).Should(BeTrue())
		})
	})

	Context("when validating assets", func() {
		It("should accept native assets", func() {
			Expect(model.NewNative(model.Bitcoin).Validate()).Should(Succeed())
			Expect(model.NewNative(model.Ethereum).Validate()).Should(Succeed())
		})

		It("should accept fungible tokens with a hex mint on evm chains", func() {
			token := model.NewFungibleToken(model.Ethereum, "0x6B175474E89094C44Da98b954EedeAC495271d0F", 18)
			Expect(token.Validate()).Should(Succeed())
		})

		It("should reject fungible tokens on bitcoin chains", func() {
			token := model.NewFungibleToken(model.Bitcoin, "0x6B175474E89094C44Da98b954EedeAC495271d0F", 8)
			Expect(token.Validate()).ShouldNot(Succeed())
		})

		It("should reject native assets carrying token fields", func() {
			asset := model.NewNative(model.Ethereum)
			asset.Decimals = 18
			Expect(asset.Validate()).ShouldNot(Succeed())
		})
	})

	Context("when validating addresses", func() {
		It("should accept a valid bitcoin address on its network", func() {
			addr, err := testutil.RandomBtcAddressP2PKH(&chaincfg.RegressionNetParams)
			Expect(err).Should(BeNil())
			Expect(model.ValidateAddress(model.BitcoinRegtest, addr.EncodeAddress())).Should(Succeed())
		})

		It("should accept a hex evm address", func() {
			Expect(model.ValidateAddress(model.Ethereum, "0x6B175474E89094C44Da98b954EedeAC495271d0F")).Should(Succeed())
		})

		It("should reject an evm address on a bitcoin chain", func() {
			Expect(model.ValidateAddress(model.BitcoinRegtest, "0x6B175474E89094C44Da98b954EedeAC495271d0F")).ShouldNot(Succeed())
		})
	})
})

var _ = Describe("Orders", func() {
	It("should resolve per family addresses", func() {
		order := model.Order{
			CreatorBtcAddress:  "creator-btc",
			CreatorEvmAddress:  "creator-evm",
			ResolverBtcAddress: "resolver-btc",
		}
		Expect(order.CreatorAddress(model.FamilyBitcoin)).Should(Equal("creator-btc"))
		Expect(order.CreatorAddress(model.FamilyEVM)).Should(Equal("creator-evm"))
		Expect(order.ResolverAddress(model.FamilyBitcoin)).Should(Equal("resolver-btc"))
		Expect(order.ResolverAddress(model.FamilyEVM)).Should(BeEmpty())
	})

	It("should expire exactly at the deadline", func() {
		deadline := time.Now()
		order := model.Order{ExpiresAt: deadline}
		Expect(order.Expired(deadline.Add(-time.Second))).Should(BeFalse())
		Expect(order.Expired(deadline)).Should(BeTrue())
		Expect(order.Expired(deadline.Add(time.Second))).Should(BeTrue())
	})

	It("should mark only completed and cancelled as terminal", func() {
		Expect(model.Completed.Terminal()).Should(BeTrue())
		Expect(model.Cancelled.Terminal()).Should(BeTrue())
		Expect(model.AwaitingDeposit.Terminal()).Should(BeFalse())
		Expect(model.DepositReceived.Terminal()).Should(BeFalse())
		Expect(model.ResolverDeposited.Terminal()).Should(BeFalse())
	})
})
