package starfield_test

import (
	"context"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/starfield/internal/frame"
	"github.com/san-kum/starfield/internal/starfield"
	"github.com/san-kum/starfield/internal/surface"
)

const frameGap = 16 * time.Millisecond

// seed42Connectors is the connector count of the first frame of an 800x600
// field seeded with 42.
const seed42Connectors = 1108

// halfRand always returns 0.5: every star seeds in the middle of the
// viewport with radius 1.5 and speed 0.35.
type halfRand struct{}

func (halfRand) Float64() float64 { return 0.5 }

// leakyScheduler ignores cancellation, like a host whose callback was
// already dequeued when Stop ran.
type leakyScheduler struct{ *frame.Queue }

func (leakyScheduler) CancelFrame(frame.Handle) {}

var _ = Describe("Renderer", func() {
	var (
		queue *frame.Queue
		clock *frame.ManualClock
		rec   *surface.Recorder
		r     *starfield.Renderer
	)

	fire := func(n int) {
		for i := 0; i < n; i++ {
			queue.Fire(clock.Advance(frameGap))
		}
	}

	BeforeEach(func() {
		queue = frame.NewQueue()
		clock = frame.NewManualClock(time.Unix(1000, 0))
		rec = surface.NewRecorder(true)
		r = starfield.New(queue, starfield.WithClock(clock), starfield.WithSeed(42))
	})

	AfterEach(func() {
		r.Stop()
	})

	Describe("Start", func() {
		It("draws 200 circles and the connectors of the seeded field on the first frame", func() {
			Expect(r.Start(rec, starfield.Size{Width: 800, Height: 600})).To(BeTrue())
			Expect(rec.Counts().Draws()).To(BeZero(), "first frame is scheduled, not drawn inline")

			fire(1)

			counts := rec.Counts()
			Expect(counts.Clears).To(Equal(1))
			Expect(counts.Circles).To(Equal(starfield.Count))

			Expect(counts.Lines).To(Equal(seed42Connectors))
			Expect(r.Stats().Lines).To(Equal(seed42Connectors))
			Expect(starfield.Connect(r.Particles(), starfield.Threshold, nil)).To(Equal(counts.Lines))
		})

		It("is deterministic for a seed", func() {
			otherRec := surface.NewRecorder(false)
			otherQueue := frame.NewQueue()
			other := starfield.New(otherQueue, starfield.WithClock(clock), starfield.WithSeed(42))
			Expect(other.Particles()).To(BeNil())

			r.Start(rec, starfield.Size{Width: 800, Height: 600})
			other.Start(otherRec, starfield.Size{Width: 800, Height: 600})
			defer other.Stop()

			now := clock.Advance(frameGap)
			queue.Fire(now)
			otherQueue.Fire(now)

			Expect(otherRec.Counts()).To(Equal(rec.Counts()))
			Expect(other.Particles()).To(Equal(r.Particles()))
		})

		It("stays inert when the surface is unavailable", func() {
			rec.Detach()
			Expect(r.Start(rec, starfield.Size{Width: 800, Height: 600})).To(BeFalse())
			Expect(r.Running()).To(BeFalse())
			Expect(queue.Pending()).To(BeZero())

			fire(3)
			Expect(rec.Counts().Draws()).To(BeZero())
		})

		It("stays inert without a surface", func() {
			Expect(r.Start(nil, starfield.Size{Width: 800, Height: 600})).To(BeFalse())
			Expect(r.Running()).To(BeFalse())
		})

		It("restarts cleanly on a second call", func() {
			r.Start(rec, starfield.Size{Width: 800, Height: 600})
			r.Start(rec, starfield.Size{Width: 400, Height: 300})
			Expect(queue.Pending()).To(Equal(1))

			fire(1)
			Expect(rec.Counts().Clears).To(Equal(1))
			Expect(rec.Size()).To(Equal(starfield.Size{Width: 400, Height: 300}))
		})
	})

	Describe("frames", func() {
		It("keeps every opacity within [0,1]", func() {
			r.Start(rec, starfield.Size{Width: 1920, Height: 1080})
			for i := 0; i < 120; i++ {
				// uneven gaps; the loop must not assume a fixed delta
				queue.Fire(clock.Advance(time.Duration(5+i%40) * time.Millisecond))
				for _, p := range r.Particles() {
					Expect(p.Opacity).To(BeNumerically(">=", 0))
					Expect(p.Opacity).To(BeNumerically("<=", 1))
				}
			}
		})

		It("draws each star with the opacity of the current frame", func() {
			r = starfield.New(queue, starfield.WithClock(clock), starfield.WithRand(halfRand{}))
			r.Start(rec, starfield.Size{Width: 800, Height: 600})

			fire(1)
			calls := rec.Calls()
			Expect(calls).NotTo(BeEmpty())
			Expect(calls[0].Op).To(Equal("circle"))
			Expect(calls[0].Color.A).To(BeNumerically("~", starfield.Pulse(frameGap, 400), 1e-12))
			Expect(calls[0].Color.R).To(Equal(starfield.Accent.R))
		})

		It("wraps a star above the top edge at a new horizontal position", func() {
			var wrapped []int
			r = starfield.New(queue,
				starfield.WithClock(clock),
				starfield.WithRand(halfRand{}),
				starfield.WithObserver(starfield.ObserverFunc(func(s starfield.FrameStats) {
					wrapped = append(wrapped, s.Wrapped)
				})))
			// y starts at 0.5 and falls 0.35 per frame; it passes 1 + 1.5 on frame 6
			r.Start(rec, starfield.Size{Width: 800, Height: 1})

			fire(5)
			for _, p := range r.Particles() {
				Expect(p.Position.Y).To(BeNumerically(">", 0))
			}

			fire(1)
			Expect(wrapped).To(Equal([]int{0, 0, 0, 0, 0, starfield.Count}))
			for _, p := range r.Particles() {
				Expect(p.Position.Y).To(Equal(-p.Radius))
				Expect(p.Position.X).To(BeNumerically(">=", 0))
				Expect(p.Position.X).To(BeNumerically("<", 800))
			}
		})

		It("keeps exactly 200 particles", func() {
			r.Start(rec, starfield.Size{Width: 800, Height: 600})
			for i := 0; i < 10; i++ {
				fire(3)
				Expect(r.Particles()).To(HaveLen(starfield.Count))
				Expect(r.Stats().Circles).To(Equal(starfield.Count))
			}
			r.Resize(starfield.Size{Width: 300, Height: 200})
			Expect(r.Particles()).To(HaveLen(starfield.Count))
			fire(1)
			Expect(r.Particles()).To(HaveLen(starfield.Count))
		})
	})

	Describe("Resize", func() {
		BeforeEach(func() {
			r.Start(rec, starfield.Size{Width: 800, Height: 600})
			fire(1)
		})

		It("reseeds inside the new bounds and applies them on the next frame", func() {
			r.Resize(starfield.Size{Width: 200, Height: 100})
			Expect(r.Size()).To(Equal(starfield.Size{Width: 200, Height: 100}))
			Expect(rec.Size()).To(Equal(starfield.Size{Width: 800, Height: 600}))
			for _, p := range r.Particles() {
				Expect(p.Position.X).To(BeNumerically("<", 200))
				Expect(p.Position.Y).To(BeNumerically("<", 100))
			}

			fire(1)
			Expect(rec.Size()).To(Equal(starfield.Size{Width: 200, Height: 100}))
		})

		It("clamps a zero viewport to 1x1", func() {
			Expect(func() { r.Resize(starfield.Size{}) }).NotTo(Panic())
			Expect(r.Size()).To(Equal(starfield.Size{Width: 1, Height: 1}))

			fire(1)
			Expect(rec.Size()).To(Equal(starfield.Size{Width: 1, Height: 1}))
			Expect(r.Particles()).To(HaveLen(starfield.Count))
		})

		It("clamps negative dimensions", func() {
			r.Resize(starfield.Size{Width: -20, Height: 50})
			Expect(r.Size()).To(Equal(starfield.Size{Width: 1, Height: 50}))
		})

		It("is idempotent for the current size", func() {
			before := r.Particles()
			r.Resize(starfield.Size{Width: 800, Height: 600})
			Expect(r.Particles()).To(Equal(before))
		})

		It("can race with frames", func() {
			var wg sync.WaitGroup
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := 0; i < 50; i++ {
					r.Resize(starfield.Size{Width: 300 + i, Height: 200 + i})
				}
			}()
			for i := 0; i < 50; i++ {
				fire(1)
			}
			wg.Wait()

			fire(1)
			Expect(r.Particles()).To(HaveLen(starfield.Count))
			Expect(rec.Size()).To(Equal(r.Size()))
		})
	})

	Describe("Stop", func() {
		It("stops all drawing", func() {
			r.Start(rec, starfield.Size{Width: 800, Height: 600})
			fire(3)
			before := rec.Counts()

			r.Stop()
			fire(10)

			Expect(rec.Counts()).To(Equal(before))
			Expect(queue.Pending()).To(BeZero())
			Expect(r.Running()).To(BeFalse())
		})

		It("ignores a callback the scheduler failed to cancel", func() {
			leaky := leakyScheduler{frame.NewQueue()}
			r = starfield.New(leaky, starfield.WithClock(clock))
			r.Start(rec, starfield.Size{Width: 800, Height: 600})
			r.Stop()

			Expect(leaky.Pending()).To(Equal(1))
			leaky.Fire(clock.Advance(frameGap))
			Expect(rec.Counts().Draws()).To(BeZero())
		})

		It("discards the field", func() {
			r.Start(rec, starfield.Size{Width: 800, Height: 600})
			fire(2)
			r.Stop()

			Expect(r.Particles()).To(BeNil())
			Expect(r.Size()).To(Equal(starfield.Size{}))
		})

		It("is safe to call repeatedly and before Start", func() {
			Expect(r.Stop).NotTo(Panic())
			r.Start(rec, starfield.Size{Width: 800, Height: 600})
			r.Stop()
			Expect(r.Stop).NotTo(Panic())
			Expect(r.Running()).To(BeFalse())
		})
	})

	Describe("without a field", func() {
		It("ignores Reseed and Resize before Start", func() {
			r.Reseed()
			r.Resize(starfield.Size{Width: 300, Height: 200})
			Expect(r.Particles()).To(BeNil())
			Expect(r.Size()).To(Equal(starfield.Size{}))
		})

		It("ignores Reseed and Resize after Stop", func() {
			r.Start(rec, starfield.Size{Width: 800, Height: 600})
			r.Stop()
			r.Reseed()
			r.Resize(starfield.Size{Width: 300, Height: 200})
			Expect(r.Particles()).To(BeNil())

			Expect(r.Start(rec, starfield.Size{Width: 640, Height: 480})).To(BeTrue())
			Expect(r.Size()).To(Equal(starfield.Size{Width: 640, Height: 480}))
		})
	})

	Describe("on a real-time ticker", func() {
		It("survives concurrent Resize and Particles and draws nothing after Stop", func() {
			ticker := frame.NewTicker(context.Background(), 500)
			DeferCleanup(ticker.Close)
			live := surface.NewRecorder(false)
			r = starfield.New(ticker, starfield.WithSeed(1))
			Expect(r.Start(live, starfield.Size{Width: 800, Height: 600})).To(BeTrue())

			var wg sync.WaitGroup
			for g := 0; g < 4; g++ {
				wg.Add(1)
				go func(g int) {
					defer GinkgoRecover()
					defer wg.Done()
					for i := 0; i < 50; i++ {
						r.Resize(starfield.Size{Width: 200 + g*50 + i, Height: 150 + i})
						if ps := r.Particles(); ps != nil {
							Expect(ps).To(HaveLen(starfield.Count))
						}
					}
				}(g)
			}
			Eventually(func() int { return live.Counts().Clears }, 2*time.Second).
				Should(BeNumerically(">=", 5))
			wg.Wait()

			r.Stop()
			before := live.Counts()
			Consistently(live.Counts, 100*time.Millisecond, 5*time.Millisecond).Should(Equal(before))
			Expect(ticker.Pending()).To(BeZero())
		})
	})

	Describe("surface loss", func() {
		It("halts on the next tick and can be started again", func() {
			r.Start(rec, starfield.Size{Width: 800, Height: 600})
			fire(2)
			before := rec.Counts()

			rec.Detach()
			fire(1)
			Expect(r.Running()).To(BeFalse())
			Expect(queue.Pending()).To(BeZero())
			Expect(r.Particles()).To(BeNil())

			fire(5)
			Expect(rec.Counts()).To(Equal(before))

			rec.Attach()
			Expect(r.Start(rec, starfield.Size{Width: 800, Height: 600})).To(BeTrue())
			fire(1)
			Expect(rec.Counts().Clears).To(Equal(before.Clears + 1))
		})
	})

	It("uses the configured accent for stars and connectors", func() {
		accent := starfield.Color{R: 1, G: 2, B: 3, A: 1}
		r = starfield.New(queue,
			starfield.WithClock(clock),
			starfield.WithRand(halfRand{}),
			starfield.WithAccent(accent),
			starfield.WithConnectorAlpha(0.25))
		r.Start(rec, starfield.Size{Width: 800, Height: 600})
		fire(1)

		var sawLine bool
		for _, c := range rec.Calls() {
			Expect(c.Color.R).To(Equal(uint8(1)))
			if c.Op == "line" {
				sawLine = true
				Expect(c.Color.A).To(Equal(0.25))
			}
		}
		Expect(sawLine).To(BeTrue())
	})
})
