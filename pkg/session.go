package factlog

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/vilterp/factlog/pkg/ast"
	"github.com/vilterp/factlog/pkg/config"
	"github.com/vilterp/factlog/pkg/lexer"
	clog "github.com/vilterp/factlog/pkg/log"
	"github.com/vilterp/factlog/pkg/parse"
	pp "github.com/vilterp/factlog/pkg/prettyprint"
	"github.com/vilterp/factlog/pkg/store"
)

// Session owns a lexer, a parser, a fact store and the rules seen so far.
// Lines are fed in with Exec; a statement may span several lines. A Session
// must only be used from one goroutine.
type Session struct {
	ctx     context.Context
	lexer   *lexer.Lexer
	parser  *parse.Parser
	store   *store.Store
	rules   []*ast.Rule
	metrics *Metrics

	nextStatementID int
}

type SessionOptions struct {
	StrictLexing bool
	StrictArity  bool
	// DataFile is a bolt journal to load facts from and record them to.
	DataFile string
}

func OptionsFromConfig(cfg *config.Config) SessionOptions {
	return SessionOptions{
		StrictLexing: cfg.StrictLexing,
		StrictArity:  cfg.StrictArity,
		DataFile:     cfg.DataFile,
	}
}

// NewSession builds a session. metrics may be shared between sessions; nil
// gets a private set.
func NewSession(ctx context.Context, opts SessionOptions, metrics *Metrics) (*Session, error) {
	mode := lexer.Lenient
	if opts.StrictLexing {
		mode = lexer.Strict
	}
	storeOpts := store.Options{
		StrictArity: opts.StrictArity,
	}
	if opts.DataFile != "" {
		journal, err := store.OpenBoltJournal(opts.DataFile)
		if err != nil {
			return nil, err
		}
		storeOpts.Journal = journal
	}
	factStore, err := store.New(storeOpts)
	if err != nil {
		if storeOpts.Journal != nil {
			storeOpts.Journal.Close()
		}
		return nil, err
	}
	if metrics == nil {
		metrics = NewMetrics()
	}
	metrics.openSessions.Inc()

	return &Session{
		ctx:     ctx,
		lexer:   lexer.NewLexer(mode),
		parser:  parse.NewParser(),
		store:   factStore,
		metrics: metrics,
	}, nil
}

func (s *Session) Ctx() context.Context {
	return s.ctx
}

// Exec tokenizes line and runs every statement it completes. Statements
// still missing their terminator wait for the next call; see Pending.
//
// Any error clears the partially read statement, so the next call starts
// fresh. Results of statements that ran before the error are returned along
// with it.
func (s *Session) Exec(line string) ([]*Result, error) {
	start := time.Now()
	defer func() {
		s.metrics.statementLatency.Observe(float64(time.Since(start).Nanoseconds()))
	}()

	if err := s.lexer.Consume(line); err != nil {
		return nil, s.fail("lex", errors.Wrap(err, "tokenizing"))
	}
	if err := s.parser.Parse(s.lexer); err != nil {
		return nil, s.fail("parse", err)
	}
	return s.runParsed()
}

// Flush is called at end of input. It fails if a statement was left
// unterminated.
func (s *Session) Flush() ([]*Result, error) {
	if err := s.parser.Finish(s.lexer); err != nil {
		return nil, s.fail("parse", err)
	}
	return s.runParsed()
}

func (s *Session) runParsed() ([]*Result, error) {
	var results []*Result
	for _, stmt := range s.parser.Drain() {
		result, err := s.run(stmt)
		if err != nil {
			return results, s.fail("store", err)
		}
		results = append(results, result)
	}
	return results, nil
}

func (s *Session) run(stmt ast.Node) (*Result, error) {
	stmtCtx := &statementCtx{ctx: clog.WithStatementID(s.ctx, s.nextStatementID)}
	s.nextStatementID++

	switch stmt := stmt.(type) {
	case *ast.Fact:
		if err := s.store.AddFact(stmt); err != nil {
			return nil, err
		}
		s.metrics.statements.WithLabelValues("fact").Inc()
		s.metrics.factsAsserted.Inc()
		clog.Debugf(stmtCtx, "asserted %s", stmt)
		return &Result{Kind: Asserted, Statement: stmt}, nil

	case *ast.Query:
		if err := s.store.AddQuery(stmt); err != nil {
			return nil, err
		}
		s.metrics.statements.WithLabelValues("query").Inc()
		query, _ := s.store.PopQuery()
		match := s.store.QueryFact(query)
		outcome := "not_satisfiable"
		if match != nil {
			outcome = "satisfiable"
		}
		s.metrics.queries.WithLabelValues(outcome).Inc()
		clog.Debugf(stmtCtx, "query %s: %s", query, outcome)
		return &Result{Kind: Answered, Statement: stmt, Query: query, Match: match}, nil

	case *ast.Rule:
		s.rules = append(s.rules, stmt)
		s.metrics.statements.WithLabelValues("rule").Inc()
		clog.Debugf(stmtCtx, "stored rule %s", stmt)
		return &Result{Kind: RuleStored, Statement: stmt}, nil

	default:
		return nil, &store.StoreError{Op: "run", Reason: fmt.Sprintf("not a statement: %T", stmt)}
	}
}

type statementCtx struct {
	ctx context.Context
}

func (sc *statementCtx) Ctx() context.Context {
	return sc.ctx
}

func (s *Session) fail(stage string, err error) error {
	s.metrics.errors.WithLabelValues(stage).Inc()
	s.Reset()
	clog.Debugf(s, "%s error: %v", stage, err)
	return err
}

// Pending reports whether part of a statement is waiting for more input.
func (s *Session) Pending() bool {
	return parse.Pending(s.lexer)
}

// Reset throws away buffered tokens and parsed statements that haven't run.
func (s *Session) Reset() {
	s.lexer.Reset()
	s.parser.Reset()
}

func (s *Session) Store() *store.Store {
	return s.store
}

func (s *Session) Rules() []*ast.Rule {
	return s.rules
}

// FormatRules lists stored rules, one per line.
func (s *Session) FormatRules() pp.Doc {
	docs := make([]pp.Doc, len(s.rules))
	for idx, rule := range s.rules {
		docs[idx] = rule.Format()
	}
	return pp.Lines(docs)
}

func (s *Session) Close() error {
	s.metrics.openSessions.Dec()
	return s.store.Close()
}
