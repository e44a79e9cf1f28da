package store_test

import (
	"errors"
	"path/filepath"
	"time"

	"github.com/intentswaps/swapd/model"
	"github.com/intentswaps/swapd/store"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Order store", func() {
	var (
		orders store.Store
		now    time.Time
	)

	newOrder := func(status model.Status, expiresAt time.Time) model.Order {
		return model.Order{
			Creator:           "alice",
			FromAsset:         model.NewNative(model.BitcoinRegtest),
			ToAsset:           model.NewNative(model.EthereumLocalnet),
			FromAmount:        100000,
			ToAmount:          2000000,
			SecretHash:        "deadbeef",
			CreatorBtcAddress: "bcrt1qcreator",
			CreatorEvmAddress: "0xcreator",
			ExpiresAt:         expiresAt,
			Status:            status,
		}
	}

	BeforeEach(func() {
		var err error
		orders, err = store.NewStore(sqlite.Open(filepath.Join(GinkgoT().TempDir(), "swapd.db")), &gorm.Config{})
		Expect(err).Should(BeNil())
		now = time.Now()
	})

	Context("when inserting orders", func() {
		It("should assign strictly increasing ids", func() {
			first := newOrder(model.AwaitingDeposit, now.Add(time.Hour))
			Expect(orders.Insert(&first)).Should(Succeed())
			second := newOrder(model.AwaitingDeposit, now.Add(time.Hour))
			Expect(orders.Insert(&second)).Should(Succeed())
			Expect(second.ID).Should(BeNumerically(">", first.ID))
		})

		It("should round trip the order through Get", func() {
			order := newOrder(model.AwaitingDeposit, now.Add(time.Hour))
			Expect(orders.Insert(&order)).Should(Succeed())

			got, err := orders.Get(order.ID)
			Expect(err).Should(BeNil())
			Expect(got.Creator).Should(Equal("alice"))
			Expect(got.FromAsset.Chain).Should(Equal(model.BitcoinRegtest))
			Expect(got.Status).Should(Equal(model.AwaitingDeposit))
		})

		It("should return ErrOrderNotFound for an unknown id", func() {
			_, err := orders.Get(42)
			Expect(err).Should(MatchError(store.ErrOrderNotFound))
		})
	})

	Context("when updating an order", func() {
		It("should persist the mutated row", func() {
			order := newOrder(model.AwaitingDeposit, now.Add(time.Hour))
			Expect(orders.Insert(&order)).Should(Succeed())

			Expect(orders.Update(order.ID, func(o *model.Order) error {
				o.Status = model.DepositReceived
				o.CreatorDeposited = true
				o.CreatorTxid = "txid"
				return nil
			})).Should(Succeed())

			got, err := orders.Get(order.ID)
			Expect(err).Should(BeNil())
			Expect(got.Status).Should(Equal(model.DepositReceived))
			Expect(got.CreatorTxid).Should(Equal("txid"))
		})

		It("should abort without writing when the mutator fails", func() {
			order := newOrder(model.AwaitingDeposit, now.Add(time.Hour))
			Expect(orders.Insert(&order)).Should(Succeed())

			abort := errors.New("abort")
			err := orders.Update(order.ID, func(o *model.Order) error {
				o.Status = model.Cancelled
				return abort
			})
			Expect(err).Should(MatchError(abort))

			got, err := orders.Get(order.ID)
			Expect(err).Should(BeNil())
			Expect(got.Status).Should(Equal(model.AwaitingDeposit))
		})
	})

	Context("when listing pending orders", func() {
		It("should return only unexpired orders awaiting a resolver", func() {
			pending := newOrder(model.DepositReceived, now.Add(time.Hour))
			Expect(orders.Insert(&pending)).Should(Succeed())
			expired := newOrder(model.DepositReceived, now.Add(-time.Hour))
			Expect(orders.Insert(&expired)).Should(Succeed())
			awaiting := newOrder(model.AwaitingDeposit, now.Add(time.Hour))
			Expect(orders.Insert(&awaiting)).Should(Succeed())

			got, err := orders.Pending(now)
			Expect(err).Should(BeNil())
			Expect(got).Should(HaveLen(1))
			Expect(got[0].ID).Should(Equal(pending.ID))
		})
	})

	Context("when listing expired orders", func() {
		It("should return unsettled orders past the deadline holding a deposit", func() {
			deposited := newOrder(model.DepositReceived, now.Add(-time.Hour))
			deposited.CreatorDeposited = true
			Expect(orders.Insert(&deposited)).Should(Succeed())

			empty := newOrder(model.AwaitingDeposit, now.Add(-time.Hour))
			Expect(orders.Insert(&empty)).Should(Succeed())

			cancelled := newOrder(model.Cancelled, now.Add(-time.Hour))
			cancelled.CreatorDeposited = true
			Expect(orders.Insert(&cancelled)).Should(Succeed())

			live := newOrder(model.DepositReceived, now.Add(time.Hour))
			live.CreatorDeposited = true
			Expect(orders.Insert(&live)).Should(Succeed())

			got, err := orders.Expired(now)
			Expect(err).Should(BeNil())
			Expect(got).Should(HaveLen(1))
			Expect(got[0].ID).Should(Equal(deposited.ID))
		})
	})

	Context("when querying by party and wallet", func() {
		It("should match either side of the order", func() {
			order := newOrder(model.DepositReceived, now.Add(time.Hour))
			order.Resolver = "bob"
			order.ResolverBtcAddress = "bcrt1qresolver"
			order.ResolverEvmAddress = "0xresolver"
			Expect(orders.Insert(&order)).Should(Succeed())

			other := newOrder(model.AwaitingDeposit, now.Add(time.Hour))
			other.Creator = "carol"
			other.CreatorBtcAddress = "bcrt1qcarol"
			other.CreatorEvmAddress = "0xcarol"
			Expect(orders.Insert(&other)).Should(Succeed())

			mine, err := orders.ByParty("bob")
			Expect(err).Should(BeNil())
			Expect(mine).Should(HaveLen(1))
			Expect(mine[0].ID).Should(Equal(order.ID))

			byCreatorWallet, err := orders.ByWallet("bcrt1qcreator")
			Expect(err).Should(BeNil())
			Expect(byCreatorWallet).Should(HaveLen(1))
			Expect(byCreatorWallet[0].ID).Should(Equal(order.ID))

			byResolverWallet, err := orders.ByWallet("0xresolver")
			Expect(err).Should(BeNil())
			Expect(byResolverWallet).Should(HaveLen(1))

			none, err := orders.ByWallet("0xunknown")
			Expect(err).Should(BeNil())
			Expect(none).Should(BeEmpty())
		})
	})
})
