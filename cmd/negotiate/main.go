package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/marketloop/negotiator/internal/config"
	listingModel "github.com/marketloop/negotiator/internal/model/listing"
	model "github.com/marketloop/negotiator/internal/model/negotiation"
	"github.com/marketloop/negotiator/internal/service/ai"
	negotiationService "github.com/marketloop/negotiator/internal/service/negotiation"
	"github.com/marketloop/negotiator/internal/service/transcript"
)

func main() {
	listingID := flag.String("listing", "victorian-sofa", "catalog listing to negotiate over")
	role := flag.String("role", "buyer", "role you act for: buyer or seller")
	budget := flag.Int("budget", 900, "buyer's maximum budget")
	minPrice := flag.Int("min", 800, "seller's minimum price")
	rounds := flag.Int("rounds", 0, "maximum bargaining rounds (0 uses the configured default)")
	interactive := flag.Bool("interactive", true, "prompt for your own utterances (blank delegates to the agent)")
	flag.Parse()

	operator := model.Role(*role)
	if !operator.Valid() {
		log.Fatalf("invalid role %q: use buyer or seller", *role)
	}

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	catalog := listingModel.NewMemoryStore(listingModel.Seed())
	item, ok := catalog.FindByID(*listingID)
	if !ok {
		log.Fatalf("unknown listing %q", *listingID)
	}

	ctx := context.Background()

	var generator model.Generator = negotiationService.RuleBased{}
	if cfg.AI.Enabled() {
		aiService, err := ai.NewService(ctx, cfg.AI)
		if err != nil {
			log.Fatalf("failed to initialize AI service: %v", err)
		}
		generator = aiService
	} else {
		fmt.Println("Ark credentials not configured, agents use the rule-based generator.")
	}

	maxRounds := *rounds
	if maxRounds <= 0 {
		maxRounds = cfg.Negotiation.MaxRounds
	}

	fmt.Println("=== Starting Marketplace Negotiation ===")
	fmt.Printf("Item: %s (%s)\n", item.Name, item.Description)
	fmt.Printf("Listed price: $%d\n", item.Price)
	if operator == model.RoleBuyer {
		fmt.Printf("Your budget (as buyer): $%d\n", *budget)
	} else {
		fmt.Printf("Your minimum price (as seller): $%d\n", *minPrice)
	}

	var human model.HumanInput
	if *interactive {
		human = &stdinInput{role: operator, reader: bufio.NewReader(os.Stdin)}
	}

	store := transcript.NewMemoryStore()
	engine := negotiationService.NewEngine(generator, human, store, cfg.Negotiation.TurnTimeout)

	session, outcome, err := engine.Run(ctx, negotiationService.Config{
		Listing:     item,
		BuyerBudget: *budget,
		SellerMin:   *minPrice,
		MaxRounds:   maxRounds,
		Interactive: *interactive,
	}, printTurn)
	if err != nil {
		log.Fatalf("negotiation failed: %v", err)
	}

	fmt.Println("\n=== Final Negotiation Result ===")
	if outcome.Agreed {
		fmt.Printf("Deal reached at $%d after %d round(s).\n", *outcome.FinalPrice, outcome.Rounds)
	} else {
		fmt.Printf("No deal: %s\n", outcome.Reason)
	}
	fmt.Printf("Session %s finished with status %s.\n", session.ID, session.Status)
}

func printTurn(turn model.Turn) {
	label := string(turn.Sender)
	detail := ""
	if turn.Price != nil {
		detail = fmt.Sprintf(" [%s $%d]", turn.Type, *turn.Price)
	} else if turn.Type != model.TurnText {
		detail = fmt.Sprintf(" [%s]", turn.Type)
	}
	fmt.Printf("%s: %s%s\n", label, turn.Content, detail)
}

// stdinInput asks the operator for their own role's utterances. A blank line
// delegates the turn to the generator.
type stdinInput struct {
	role   model.Role
	reader *bufio.Reader
}

func (s *stdinInput) TryGetUtterance(role model.Role, round int) (string, bool) {
	if role != s.role {
		return "", false
	}

	fmt.Printf("[round %d] your utterance as %s (blank delegates) > ", round, role)
	line, err := s.reader.ReadString('\n')
	if err != nil {
		return "", false
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return "", false
	}
	return line, true
}
