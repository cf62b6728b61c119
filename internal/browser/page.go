// internal/browser/page.go
package browser

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mintfeed/mintfeed-cli/internal/dom"
)

// Page exposes the session's current tab as a dom.Document and as a
// dom.MutationSource. Structural changes are harvested by polling a
// page-side MutationObserver queue at the configured snapshot interval.
type Page struct {
	session *Session
	logger  *zap.Logger

	mu     sync.Mutex
	subs   map[int]func(dom.Mutation)
	nextID int
	stop   chan struct{}
	done   chan struct{}
}

var (
	_ dom.Document       = (*Page)(nil)
	_ dom.MutationSource = (*Page)(nil)
)

// NewPage wraps the session's tab. The mutation observer is installed
// lazily on first subscription.
func NewPage(s *Session, logger *zap.Logger) *Page {
	return &Page{
		session: s,
		logger:  logger.Named("page"),
		subs:    make(map[int]func(dom.Mutation)),
	}
}

func (p *Page) elements(refs []nodeRef) []dom.Element {
	out := make([]dom.Element, 0, len(refs))
	for i := range refs {
		if el := p.elementFor(&refs[i]); el != nil {
			out = append(out, el)
		}
	}
	return out
}

func (p *Page) ActiveElement() dom.Element {
	var ref *nodeRef
	p.eval(iife("return describe(document.activeElement);"), &ref)
	el := p.elementFor(ref)
	if el == nil {
		return nil
	}
	return el
}

func (p *Page) ElementFromPoint(x, y float64) dom.Element {
	var ref *nodeRef
	p.eval(iife(fmt.Sprintf("return describe(document.elementFromPoint(%s, %s));",
		jsonEncode(x), jsonEncode(y))), &ref)
	el := p.elementFor(ref)
	if el == nil {
		return nil
	}
	return el
}

func (p *Page) Query(xpath string) dom.Element {
	els := p.QueryAll(xpath)
	if len(els) == 0 {
		return nil
	}
	return els[0]
}

func (p *Page) QueryAll(xpath string) []dom.Element {
	var refs []nodeRef
	p.eval(iife(fmt.Sprintf(`
const out = [];
try {
	const it = document.evaluate(%s, document, null, XPathResult.ORDERED_NODE_SNAPSHOT_TYPE, null);
	for (let i = 0; i < it.snapshotLength; i++) {
		const m = it.snapshotItem(i);
		if (m.nodeType === 1) out.push(describe(m));
	}
} catch (err) {}
return out;`, jsonEncode(xpath))), &refs)
	return p.elements(refs)
}

func (p *Page) Viewport() dom.Rect {
	var r dom.Rect
	p.eval("({ X: 0, Y: 0, Width: window.innerWidth, Height: window.innerHeight })", &r)
	return r
}

// Subscribe starts the mutation poller on the first subscriber and stops it
// when the last one unsubscribes.
func (p *Page) Subscribe(fn func(dom.Mutation)) func() {
	p.mu.Lock()
	defer p.mu.Unlock()

	id := p.nextID
	p.nextID++
	p.subs[id] = fn

	if len(p.subs) == 1 {
		var installed bool
		if err := p.session.Eval(observerScript, &installed); err != nil {
			p.logger.Warn("Failed to install mutation observer.", zap.Error(err))
		}
		p.stop = make(chan struct{})
		p.done = make(chan struct{})
		go p.poll(p.stop, p.done)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			p.mu.Lock()
			delete(p.subs, id)
			var stop, done chan struct{}
			if len(p.subs) == 0 && p.stop != nil {
				stop, done = p.stop, p.done
				p.stop, p.done = nil, nil
			}
			p.mu.Unlock()
			if stop != nil {
				close(stop)
				<-done
			}
		})
	}
}

func (p *Page) poll(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(p.session.SnapshotInterval())
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			p.drain()
		}
	}
}

func (p *Page) drain() {
	var records []mutationRecord
	if err := p.session.Eval(drainMutationsScript, &records); err != nil {
		p.logger.Debug("Mutation drain failed.", zap.Error(err))
		return
	}
	if len(records) == 0 {
		return
	}

	var mut dom.Mutation
	for i := range records {
		switch records[i].Kind {
		case "added":
			if el := p.elementFor(&nodeRef{XPath: records[i].XPath, Tag: records[i].Tag}); el != nil {
				mut.Added = append(mut.Added, el)
			}
		case "removed":
			// Removed nodes are already detached and carry no address.
			// Downstream consumers rely on their own detach checks and
			// expiry for these, so only the tag is surfaced.
			mut.Removed = append(mut.Removed, &element{page: p, tag: records[i].Tag})
		}
	}

	p.mu.Lock()
	fns := make([]func(dom.Mutation), 0, len(p.subs))
	for _, fn := range p.subs {
		fns = append(fns, fn)
	}
	p.mu.Unlock()
	for _, fn := range fns {
		fn(mut)
	}
}

func (p *Page) eval(script string, res any) {
	if err := p.session.Eval(script, res); err != nil {
		p.logger.Debug("Page query failed.", zap.Error(err))
	}
}
