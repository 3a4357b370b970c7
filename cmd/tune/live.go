package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	magnetron "github.com/cbegin/magnetron"
	"github.com/cbegin/magnetron/internal/audio"
	"github.com/cbegin/magnetron/internal/midi"
	"github.com/cbegin/magnetron/internal/pitch"
	"github.com/cbegin/magnetron/internal/tuning"
	"github.com/spf13/cobra"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

// liveFlags are the port-selection and channel-pool flags shared by every
// live subcommand, mirroring the original CLI's --midi-in/--midi-out and
// --in-chan/--out-chan/--out-chans.
type liveFlags struct {
	midiIn   string
	midiOut  string
	inChan   int
	outChan  int
	outChans int
	clash    string
	record   string
	waveform string
}

func (f *liveFlags) register(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&f.midiIn, "midi-in", "", "input port name (substring match)")
	cmd.PersistentFlags().StringVar(&f.midiOut, "midi-out", "", "output port name (substring match), or a new virtual port if not found")
	cmd.PersistentFlags().IntVar(&f.inChan, "in-chan", -1, "input channel to listen on, -1 for all")
	cmd.PersistentFlags().IntVar(&f.outChan, "out-chan", 0, "first output channel in the pool")
	cmd.PersistentFlags().IntVar(&f.outChans, "out-chans", 16, "number of output channels in the pool")
	cmd.PersistentFlags().StringVar(&f.clash, "clash", "stop", "JIT pool exhaustion policy: block, stop, or ignore")
	cmd.PersistentFlags().StringVar(&f.record, "record", "", "also synthesize internally and stream to this WAV file")
	cmd.PersistentFlags().StringVar(&f.waveform, "waveform", "Sine", "catalog waveform internal synthesis plays, when --record is set")
}

func (f *liveFlags) pooling() (tuning.PoolingMode, error) {
	switch f.clash {
	case "block":
		return tuning.PoolingBlock, nil
	case "stop":
		return tuning.PoolingStop, nil
	case "ignore":
		return tuning.PoolingIgnore, nil
	default:
		return 0, fmt.Errorf("invalid --clash %q, expected block, stop, or ignore", f.clash)
	}
}

func init() {
	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "Dispatch live retuned MIDI to an external synthesizer",
	}
	rootCmd.AddCommand(liveCmd)

	var lf liveFlags
	lf.register(liveCmd)
	var kf keyMapFlags
	kf.register(liveCmd)

	jitCmd := &cobra.Command{Use: "jit", Short: "Build the key->channel map on the fly"}
	aotCmd := &cobra.Command{Use: "aot", Short: "Build a fixed key->channel map up front"}
	liveCmd.AddCommand(jitCmd, aotCmd)

	for _, methodCmd := range methodSubcommands() {
		m := methodCmd
		jit := &cobra.Command{Use: m.use, Short: m.short}
		addScaleSubcommands(jit, func(scale pitch.Scale) error {
			return runLiveJIT(lf, kf, m.method, scale)
		})
		jitCmd.AddCommand(jit)

		aot := &cobra.Command{Use: m.use, Short: m.short}
		addScaleSubcommands(aot, func(scale pitch.Scale) error {
			return runLiveAOT(lf, kf, m.method, scale)
		})
		aotCmd.AddCommand(aot)
	}
}

type methodSubcommand struct {
	use, short string
	method     tuning.Method
}

func methodSubcommands() []methodSubcommand {
	return []methodSubcommand{
		{"full", "Single Note Tuning Change, one detuning per sounding note", tuning.FullKeyboard},
		{"octave", "Scale/Octave Tuning, one detuning per note letter", tuning.Octave},
		{"channel", "RPN Channel Fine Tuning, one detuning per channel", tuning.ChannelFineTuning},
		{"pitch-bend", "Pitch Bend Change, one detuning per channel", tuning.PitchBend},
	}
}

// selectInAndSender picks the input port matching lf.midiIn (or the first
// available one) and a sender for lf.midiOut, opening a same-named virtual
// output port when no existing output matches.
func selectInAndSender(drv *rtmididrv.Driver, lf liveFlags) (drivers.In, func(gomidi.Message) error, error) {
	ins, err := drv.Ins()
	if err != nil {
		return nil, nil, fmt.Errorf("listing MIDI inputs: %w", err)
	}
	var in drivers.In
	for _, p := range ins {
		if lf.midiIn == "" || strings.Contains(p.String(), lf.midiIn) {
			in = p
			break
		}
	}
	if in == nil {
		return nil, nil, fmt.Errorf("no MIDI input port matches %q", lf.midiIn)
	}

	outs, err := drv.Outs()
	if err != nil {
		return nil, nil, fmt.Errorf("listing MIDI outputs: %w", err)
	}
	for _, p := range outs {
		if lf.midiOut != "" && strings.Contains(p.String(), lf.midiOut) {
			send, err := gomidi.SendTo(p)
			if err != nil {
				return nil, nil, fmt.Errorf("opening MIDI output %q: %w", p.String(), err)
			}
			fmt.Fprintf(os.Stderr, "listening on %q, dispatching to %q\n", in.String(), p.String())
			return in, send, nil
		}
	}

	name := lf.midiOut
	if name == "" {
		name = "tune"
	}
	virtOut, err := drv.OpenVirtualOut(name)
	if err != nil {
		return nil, nil, fmt.Errorf("creating virtual MIDI output %q: %w", name, err)
	}
	send, err := gomidi.SendTo(virtOut)
	if err != nil {
		return nil, nil, fmt.Errorf("sending to virtual MIDI output %q: %w", name, err)
	}
	fmt.Fprintf(os.Stderr, "listening on %q, dispatching to new virtual port %q\n", in.String(), name)
	return in, send, nil
}

// startRecording opens the optional --record session: a magnetron.Engine
// tuned the same way the dispatcher is, played live and teed to a WAV
// file via internal/audio.Recorder. It returns nil, nil, nil when
// --record was not set.
func startRecording(lf liveFlags, t pitch.Tuning) (*magnetron.Engine, func() error, error) {
	if lf.record == "" {
		return nil, nil, nil
	}
	const sampleRate = 44100
	engine, err := magnetron.NewEngine(sampleRate, magnetron.WithTuning(t))
	if err != nil {
		return nil, nil, fmt.Errorf("starting --record engine: %w", err)
	}

	rec, err := audio.NewRecorder(lf.record, sampleRate, engine)
	if err != nil {
		return nil, nil, fmt.Errorf("opening --record file %q: %w", lf.record, err)
	}
	player, err := audio.NewPlayer(sampleRate, rec)
	if err != nil {
		return nil, nil, fmt.Errorf("starting --record playback: %w", err)
	}
	player.Play()
	return engine, rec.Close, nil
}

func runLiveJIT(lf liveFlags, kf keyMapFlags, method tuning.Method, scale pitch.Scale) error {
	pooling, err := lf.pooling()
	if err != nil {
		return err
	}
	km, err := kf.keyMap(scale)
	if err != nil {
		return err
	}
	t := pitch.NewTuning(scale, km)
	tuner := tuning.NewJitTuner(method, pooling, lf.outChan, lf.outChans)

	recEngine, closeRec, err := startRecording(lf, t)
	if err != nil {
		return err
	}
	if closeRec != nil {
		defer closeRec()
	}

	drv, err := rtmididrv.New()
	if err != nil {
		return fmt.Errorf("opening MIDI driver: %w", err)
	}
	defer drv.Close()

	in, send, err := selectInAndSender(drv, lf)
	if err != nil {
		return err
	}

	stopListening, err := gomidi.ListenTo(in, func(msg gomidi.Message, _ int32) {
		var ch, key, vel uint8
		if msg.GetNoteOn(&ch, &key, &vel) {
			if lf.inChan >= 0 && int(ch) != lf.inChan {
				return
			}
			p := t.PitchOf(int(key))
			msgs, _, _, ok := tuner.NoteOn(int(key), p, vel)
			if !ok {
				return
			}
			sendAll(send, msgs)
			if recEngine != nil {
				if err := recEngine.NoteOn(int(key), lf.waveform, float64(vel)/127); err != nil {
					slog.Warn("record engine NoteOn failed", "key", key, "waveform", lf.waveform, "err", err)
				}
			}
			return
		}
		if msg.GetNoteOff(&ch, &key, &vel) {
			if lf.inChan >= 0 && int(ch) != lf.inChan {
				return
			}
			off, _, ok := tuner.NoteOff(int(key), vel)
			if !ok {
				return
			}
			sendAll(send, []midi.Message{off})
			if recEngine != nil {
				recEngine.NoteOff(int(key))
			}
		}
	})
	if err != nil {
		return fmt.Errorf("listening for MIDI input: %w", err)
	}
	defer stopListening()

	waitForSignal()
	return nil
}

func runLiveAOT(lf liveFlags, kf keyMapFlags, method tuning.Method, scale pitch.Scale) error {
	km, err := kf.keyMap(scale)
	if err != nil {
		return err
	}
	t := pitch.NewTuning(scale, km)

	keys := make([]int, 128)
	for i := range keys {
		keys[i] = i
	}
	tuner, setup, err := tuning.NewAotTuner(t, keys, method, lf.outChan, lf.outChans)
	if err != nil {
		return err
	}

	recEngine, closeRec, err := startRecording(lf, t)
	if err != nil {
		return err
	}
	if closeRec != nil {
		defer closeRec()
	}

	drv, err := rtmididrv.New()
	if err != nil {
		return fmt.Errorf("opening MIDI driver: %w", err)
	}
	defer drv.Close()

	in, send, err := selectInAndSender(drv, lf)
	if err != nil {
		return err
	}
	sendAll(send, setup)

	stopListening, err := gomidi.ListenTo(in, func(msg gomidi.Message, _ int32) {
		var ch, key, vel uint8
		if msg.GetNoteOn(&ch, &key, &vel) {
			if lf.inChan >= 0 && int(ch) != lf.inChan {
				return
			}
			outCh, note, ok := tuner.ChannelAndNote(int(key))
			if !ok {
				return
			}
			send(midi.NoteOn(outCh, midi.Key(note), vel))
			if recEngine != nil {
				if err := recEngine.NoteOn(int(key), lf.waveform, float64(vel)/127); err != nil {
					slog.Warn("record engine NoteOn failed", "key", key, "waveform", lf.waveform, "err", err)
				}
			}
			return
		}
		if msg.GetNoteOff(&ch, &key, &vel) {
			if lf.inChan >= 0 && int(ch) != lf.inChan {
				return
			}
			outCh, note, ok := tuner.ChannelAndNote(int(key))
			if !ok {
				return
			}
			send(midi.NoteOff(outCh, midi.Key(note)))
			if recEngine != nil {
				recEngine.NoteOff(int(key))
			}
		}
	})
	if err != nil {
		return fmt.Errorf("listening for MIDI input: %w", err)
	}
	defer stopListening()

	waitForSignal()
	return nil
}

func sendAll(send func(gomidi.Message) error, msgs []midi.Message) {
	for _, m := range msgs {
		if err := send(gomidi.Message(m)); err != nil {
			fmt.Fprintf(os.Stderr, "send error: %v\n", err)
		}
	}
}

func waitForSignal() {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
}
