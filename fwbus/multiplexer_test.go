package fwbus

import (
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	gomock "go.uber.org/mock/gomock"
)

var _ = Describe("EventMux", func() {
	var (
		mockCtrl *gomock.Controller
		ch       *MockChannel
		gen      GenerationTracker
		mux      *EventMux
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		ch = NewMockChannel(mockCtrl)
		gen = GenerationTracker{}
		gen.ObserveReset(4)
		mux = NewEventMux(ch, &gen, time.Millisecond)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	Context("addressed transactions", func() {
		var req *Request

		BeforeEach(func() {
			var err error
			req, err = NewReadRequest(0xfffff0000400, 4)
			Expect(err).NotTo(HaveOccurred())
		})

		It("should complete once both legs are observed", func() {
			ch.EXPECT().Send(req).Return(nil)
			gomock.InOrder(
				ch.EXPECT().Poll(gomock.Any()).
					Return(&SentAck{Status: StatusComplete}, nil),
				ch.EXPECT().Poll(gomock.Any()).
					Return(&ResponseReceived{
						Status: StatusComplete,
						Data:   []byte{0x12, 0x34, 0x56, 0x78},
					}, nil),
			)

			res, err := mux.Transact(req)

			Expect(err).NotTo(HaveOccurred())
			Expect(res.Status).To(Equal(StatusComplete))
			Expect(req.Generation).To(Equal(uint32(4)))

			value, ok := res.Value()
			Expect(ok).To(BeTrue())
			Expect(value).To(Equal("12345678"))
		})

		It("should accept the legs in either order", func() {
			ch.EXPECT().Send(req).Return(nil)
			gomock.InOrder(
				ch.EXPECT().Poll(gomock.Any()).
					Return(&ResponseReceived{Status: StatusComplete}, nil),
				ch.EXPECT().Poll(gomock.Any()).
					Return(&SentAck{Status: StatusComplete}, nil),
			)

			res, err := mux.Transact(req)

			Expect(err).NotTo(HaveOccurred())
			Expect(res.Status).To(Equal(StatusComplete))
		})

		It("should resend exactly once on a generation-mismatch response", func() {
			ch.EXPECT().Send(req).Return(nil).Times(2)
			gomock.InOrder(
				ch.EXPECT().Poll(gomock.Any()).
					Return(&SentAck{Status: StatusComplete}, nil),
				ch.EXPECT().Poll(gomock.Any()).
					Return(&ResponseReceived{Status: StatusGenerationMismatch}, nil),
				ch.EXPECT().Poll(gomock.Any()).
					Return(&SentAck{Status: StatusComplete}, nil),
				ch.EXPECT().Poll(gomock.Any()).
					Return(&ResponseReceived{
						Status: StatusComplete,
						Data:   []byte{0, 0, 0, 1},
					}, nil),
			)

			res, err := mux.Transact(req)

			Expect(err).NotTo(HaveOccurred())
			Expect(res.Status).To(Equal(StatusComplete))
		})

		It("should surface a second consecutive mismatch without retrying", func() {
			ch.EXPECT().Send(req).Return(nil).Times(2)
			gomock.InOrder(
				ch.EXPECT().Poll(gomock.Any()).
					Return(&SentAck{Status: StatusComplete}, nil),
				ch.EXPECT().Poll(gomock.Any()).
					Return(&ResponseReceived{Status: StatusGenerationMismatch}, nil),
				ch.EXPECT().Poll(gomock.Any()).
					Return(&SentAck{Status: StatusComplete}, nil),
				ch.EXPECT().Poll(gomock.Any()).
					Return(&ResponseReceived{Status: StatusGenerationMismatch}, nil),
			)

			res, err := mux.Transact(req)

			Expect(err).NotTo(HaveOccurred())
			Expect(res.Status).To(Equal(StatusGenerationMismatch))
		})

		It("should resend once with the new generation after a bus reset", func() {
			generations := []uint32{}
			ch.EXPECT().Send(req).
				Do(func(r *Request) { generations = append(generations, r.Generation) }).
				Return(nil).
				Times(2)
			gomock.InOrder(
				ch.EXPECT().Poll(gomock.Any()).
					Return(&BusReset{Generation: 5}, nil),
				ch.EXPECT().Poll(gomock.Any()).
					Return(&SentAck{Status: StatusComplete}, nil),
				ch.EXPECT().Poll(gomock.Any()).
					Return(&ResponseReceived{Status: StatusComplete}, nil),
			)

			res, err := mux.Transact(req)

			Expect(err).NotTo(HaveOccurred())
			Expect(res.Status).To(Equal(StatusComplete))
			Expect(generations).To(Equal([]uint32{4, 5}))
			Expect(gen.Current()).To(Equal(uint32(5)))
		})

		It("should terminate on a failed send acknowledgment", func() {
			ch.EXPECT().Send(req).Return(nil)
			ch.EXPECT().Poll(gomock.Any()).
				Return(&SentAck{Status: StatusSendError}, nil)

			res, err := mux.Transact(req)

			Expect(err).NotTo(HaveOccurred())
			Expect(res.Status).To(Equal(StatusSendError))
		})

		It("should fail with a timeout when the poll yields nothing", func() {
			ch.EXPECT().Send(req).Return(nil)
			ch.EXPECT().Poll(gomock.Any()).Return(nil, nil)

			_, err := mux.Transact(req)

			var timeout *TimeoutError
			Expect(errors.As(err, &timeout)).To(BeTrue())
			Expect(timeout.AwaitingAck).To(BeTrue())
		})

		It("should abort on an event it is not awaiting", func() {
			ch.EXPECT().Send(req).Return(nil)
			ch.EXPECT().Poll(gomock.Any()).
				Return(&RequestReceived{Handle: 7}, nil)

			_, err := mux.Transact(req)

			Expect(err).To(MatchError(ErrUnexpectedEvent))
		})

		It("should dispatch broadcasts through the broadcast path", func() {
			bcast, err := NewWriteRequest(KindBroadcast, 0xfffff0000234, []byte{0, 0, 0, 1})
			Expect(err).NotTo(HaveOccurred())

			ch.EXPECT().SendBroadcast(bcast).Return(nil)
			gomock.InOrder(
				ch.EXPECT().Poll(gomock.Any()).
					Return(&SentAck{Status: StatusComplete}, nil),
				ch.EXPECT().Poll(gomock.Any()).
					Return(&ResponseReceived{Status: StatusComplete}, nil),
			)

			res, err := mux.Transact(bcast)

			Expect(err).NotTo(HaveOccurred())
			Expect(res.Status).To(Equal(StatusComplete))
		})
	})

	Context("PHY control exchanges", func() {
		It("should await only the send ack for fire-and-forget packets", func() {
			quadlet := uint32(0x00400000)
			ch.EXPECT().SendPhyPacket(quadlet, ^quadlet, uint32(4)).Return(nil)
			ch.EXPECT().Poll(gomock.Any()).
				Return(&SentAck{Status: StatusComplete}, nil)

			out, err := mux.SendPhyPacket(quadlet, PhyWait{})

			Expect(err).NotTo(HaveOccurred())
			Expect(out.HasPing).To(BeFalse())
		})

		It("should record the ping timestamp from the ack", func() {
			quadlet := uint32(0x01000000)
			ch.EXPECT().SendPhyPacket(quadlet, ^quadlet, uint32(4)).Return(nil)
			gomock.InOrder(
				ch.EXPECT().Poll(gomock.Any()).
					Return(&SentAck{
						Status:       StatusComplete,
						Timestamp:    2457,
						HasTimestamp: true,
					}, nil),
				ch.EXPECT().Poll(gomock.Any()).
					Return(&PhyReplyReceived{Quadlet: 0x81000000, Length: 8}, nil),
			)

			out, err := mux.SendPhyPacket(quadlet, PhyWait{
				ResponseMask: 0xff000000,
				ResponseBits: 0x81000000,
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(out.HasPing).To(BeTrue())
			Expect(out.PingTime).To(Equal(uint32(2457)))
			Expect(out.SelfIDs).To(Equal([]uint32{0x81000000}))
		})

		It("should fail without resend when a bus reset interrupts the wait", func() {
			quadlet := uint32(0x01000000)
			ch.EXPECT().SendPhyPacket(quadlet, ^quadlet, uint32(4)).Return(nil)
			ch.EXPECT().Poll(gomock.Any()).
				Return(&BusReset{Generation: 9}, nil)

			_, err := mux.SendPhyPacket(quadlet, PhyWait{
				ResponseMask: 0xff000000,
				ResponseBits: 0x81000000,
			})

			Expect(err).To(MatchError(ErrBusReset))
			Expect(gen.Current()).To(Equal(uint32(9)))
		})

		It("should stop self-ID accumulation when the more bit clears", func() {
			quadlet := uint32(0x01000000)
			ch.EXPECT().SendPhyPacket(quadlet, ^quadlet, uint32(4)).Return(nil)
			gomock.InOrder(
				ch.EXPECT().Poll(gomock.Any()).
					Return(&SentAck{Status: StatusComplete}, nil),
				ch.EXPECT().Poll(gomock.Any()).
					Return(&PhyReplyReceived{Quadlet: 0x81000001, Length: 8}, nil),
				ch.EXPECT().Poll(gomock.Any()).
					Return(&PhyReplyReceived{Quadlet: 0x81800000, Length: 8}, nil),
			)

			out, err := mux.SendPhyPacket(quadlet, PhyWait{
				ResponseMask: 0xff000000,
				ResponseBits: 0x81000000,
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(out.SelfIDs).To(HaveLen(2))
		})

		It("should stop self-ID accumulation at three quadlets", func() {
			quadlet := uint32(0x01000000)
			ch.EXPECT().SendPhyPacket(quadlet, ^quadlet, uint32(4)).Return(nil)
			gomock.InOrder(
				ch.EXPECT().Poll(gomock.Any()).
					Return(&SentAck{Status: StatusComplete}, nil),
				ch.EXPECT().Poll(gomock.Any()).
					Return(&PhyReplyReceived{Quadlet: 0x81000001, Length: 8}, nil),
				ch.EXPECT().Poll(gomock.Any()).
					Return(&PhyReplyReceived{Quadlet: 0x81800001, Length: 8}, nil),
				ch.EXPECT().Poll(gomock.Any()).
					Return(&PhyReplyReceived{Quadlet: 0x81810001, Length: 8}, nil),
			)

			out, err := mux.SendPhyPacket(quadlet, PhyWait{
				ResponseMask: 0xff000000,
				ResponseBits: 0x81000000,
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(out.SelfIDs).To(HaveLen(3))
		})

		It("should ignore replies that fail the echo match", func() {
			quadlet := uint32(0x01000a00)
			ch.EXPECT().SendPhyPacket(quadlet, ^quadlet, uint32(4)).Return(nil)
			gomock.InOrder(
				ch.EXPECT().Poll(gomock.Any()).
					Return(&SentAck{Status: StatusComplete}, nil),
				ch.EXPECT().Poll(gomock.Any()).
					Return(&PhyReplyReceived{Quadlet: 0x02000a42, Length: 8}, nil),
				ch.EXPECT().Poll(gomock.Any()).
					Return(&PhyReplyReceived{Quadlet: 0x010a0a42, Length: 8}, nil),
			)

			out, err := mux.SendPhyPacket(quadlet, PhyWait{
				ResponseMask: 0xffffff00,
				ResponseBits: 0x010a0a00,
			})

			Expect(err).NotTo(HaveOccurred())
			Expect(out.Reply).To(Equal(uint32(0x010a0a42)))
		})
	})
})
