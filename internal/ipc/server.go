package ipc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"os"
	"strings"
	"sync"
	"time"

	"log/slog"

	"foyer/internal/kiosk"
	"foyer/internal/logging"
	"foyer/internal/logs"
)

// Server exposes kiosk control via JSON-RPC over a Unix domain socket.
type Server struct {
	path      string
	kiosk     *kiosk.Kiosk
	logger    *slog.Logger
	listener  net.Listener
	rpcServer *rpc.Server

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewServer configures the IPC server at the given socket path.
func NewServer(ctx context.Context, path string, k *kiosk.Kiosk, logger *slog.Logger) (*Server, error) {
	if k == nil {
		return nil, errors.New("ipc server requires kiosk")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	if err := os.RemoveAll(path); err != nil {
		return nil, fmt.Errorf("remove existing socket: %w", err)
	}

	listener, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listen on socket: %w", err)
	}

	rpcServer := rpc.NewServer()
	srv := &service{kiosk: k, logger: logger, ctx: ctx}
	if err := rpcServer.RegisterName("Foyer", srv); err != nil {
		listener.Close()
		return nil, fmt.Errorf("register rpc service: %w", err)
	}

	serverCtx, cancel := context.WithCancel(ctx)
	return &Server{
		path:      path,
		kiosk:     k,
		logger:    logger,
		listener:  listener,
		rpcServer: rpcServer,
		ctx:       serverCtx,
		cancel:    cancel,
	}, nil
}

// Serve starts accepting RPC connections until the context is canceled.
func (s *Server) Serve() {
	s.logger.Debug("IPC server listening", logging.String("socket", s.path))
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			conn, err := s.listener.Accept()
			if err != nil {
				select {
				case <-s.ctx.Done():
					return
				default:
				}
				s.logger.Warn("accept failed",
					logging.Error(err),
					logging.String(logging.FieldEventType, "ipc_accept_failed"),
					logging.String(logging.FieldImpact, "IPC clients may fail to connect"),
					logging.String(logging.FieldErrorHint, "check socket permissions and restart the kiosk if needed"))
				continue
			}
			s.wg.Add(1)
			go func(c net.Conn) {
				defer s.wg.Done()
				s.rpcServer.ServeCodec(jsonrpc.NewServerCodec(c))
			}(conn)
		}
	}()
}

// Close stops the server and removes the socket file.
func (s *Server) Close() {
	s.cancel()
	if s.listener != nil {
		_ = s.listener.Close()
	}
	s.wg.Wait()
	if err := os.RemoveAll(s.path); err != nil {
		s.logger.Warn("failed to remove socket",
			logging.String("socket", s.path),
			logging.Error(err),
			logging.String(logging.FieldEventType, "ipc_socket_cleanup_failed"),
			logging.String(logging.FieldImpact, "stale IPC socket may block future starts"),
			logging.String(logging.FieldErrorHint, "remove the socket file manually or rerun foyer stop"))
	}
}

type service struct {
	kiosk  *kiosk.Kiosk
	logger *slog.Logger
	ctx    context.Context
}

func (s *service) log() *slog.Logger {
	if s.logger == nil {
		return logging.NewNop()
	}
	return s.logger.With(logging.String(logging.FieldComponent, "ipc"))
}

func (s *service) Status(_ StatusRequest, resp *StatusResponse) error {
	status := s.kiosk.Status(s.ctx)
	resp.Running = status.Running
	resp.DemoMode = status.DemoMode
	resp.Scanner = status.Scanner
	resp.Session = status.Session
	resp.MemberStats = status.MemberStats
	resp.AttendanceStats = status.AttendanceStats
	resp.DBPath = status.DBPath
	resp.LockPath = status.LockFilePath
	resp.PID = os.Getpid()
	return nil
}

func (s *service) Start(_ StartRequest, resp *StartResponse) error {
	if err := s.kiosk.Start(s.ctx); err != nil {
		resp.Message = err.Error()
		return nil
	}
	resp.Started = true
	s.log().Info("kiosk started via IPC",
		logging.String(logging.FieldEventType, "kiosk_start"))
	return nil
}

func (s *service) Stop(_ StopRequest, resp *StopResponse) error {
	s.kiosk.Stop()
	resp.Stopped = true
	s.log().Info("kiosk stopped via IPC",
		logging.String(logging.FieldEventType, "kiosk_stop"))
	return nil
}

func (s *service) MembersList(_ MembersListRequest, resp *MembersListResponse) error {
	resp.Members = s.kiosk.Members()
	resp.DemoMode = s.kiosk.Status(s.ctx).DemoMode
	return nil
}

func (s *service) MembersReload(_ MembersReloadRequest, resp *MembersReloadResponse) error {
	s.log().Debug("member reload requested")
	members := s.kiosk.ReloadMembers(s.ctx)
	resp.Count = len(members)
	resp.DemoMode = s.kiosk.Status(s.ctx).DemoMode
	s.log().Info("member directory reloaded via IPC",
		logging.String(logging.FieldEventType, "members_reload"),
		logging.Int("count", resp.Count))
	return nil
}

func (s *service) MembersStats(_ MembersStatsRequest, resp *MembersStatsResponse) error {
	resp.Stats = s.kiosk.MemberStats()
	return nil
}

func (s *service) Resolve(req ResolveRequest, resp *ResolveResponse) error {
	if strings.TrimSpace(req.Identifier) == "" {
		return errors.New("identifier is required")
	}
	resolved, err := s.kiosk.Resolve(req.Identifier)
	if err != nil {
		return err
	}
	resp.Member = resolved
	return nil
}

func (s *service) Checkin(req CheckinRequest, resp *CheckinResponse) error {
	if strings.TrimSpace(req.Identifier) == "" {
		return errors.New("identifier is required")
	}
	resolved, err := s.kiosk.Checkin(s.ctx, req.Identifier)
	if err != nil {
		return err
	}
	resp.Member = resolved
	s.log().Info("member checked in via IPC",
		logging.String(logging.FieldEventType, "checkin"),
		logging.String(logging.FieldMemberID, resolved.RegistrationNumber))
	return nil
}

func (s *service) SessionStatus(_ SessionStatusRequest, resp *SessionStatusResponse) error {
	resp.Snapshot = s.kiosk.SessionSnapshot()
	return nil
}

func (s *service) SessionDetails(req SessionDetailsRequest, resp *SessionDetailsResponse) error {
	var err error
	if req.Cancel {
		err = s.kiosk.SessionCancelDetails()
	} else {
		err = s.kiosk.SessionStartDetails()
	}
	if err != nil {
		return err
	}
	resp.State = string(s.kiosk.SessionSnapshot().State)
	return nil
}

func (s *service) SessionBegin(req SessionBeginRequest, resp *SessionBeginResponse) error {
	if err := s.kiosk.SessionBegin(req.Purpose, req.Topic); err != nil {
		return err
	}
	resp.Snapshot = s.kiosk.SessionSnapshot()
	s.log().Info("session started via IPC",
		logging.String(logging.FieldEventType, "session_begin"))
	return nil
}

func (s *service) SessionCancel(_ SessionCancelRequest, resp *SessionCancelResponse) error {
	if err := s.kiosk.SessionCancel(); err != nil {
		return err
	}
	resp.Cancelled = true
	return nil
}

func (s *service) SessionEnd(req SessionEndRequest, resp *SessionEndResponse) error {
	record, err := s.kiosk.SessionEnd(s.ctx, req.Confirm)
	if err != nil {
		return err
	}
	resp.Record = record
	s.log().Info("session closed via IPC",
		logging.String(logging.FieldEventType, "session_end"),
		logging.String(logging.FieldSessionID, record.ID))
	return nil
}

func (s *service) AttendanceList(_ AttendanceListRequest, resp *AttendanceListResponse) error {
	records, err := s.kiosk.AttendanceList(s.ctx)
	if err != nil {
		return err
	}
	resp.Records = records
	return nil
}

func (s *service) AttendanceStats(_ AttendanceStatsRequest, resp *AttendanceStatsResponse) error {
	stats, err := s.kiosk.AttendanceStats(s.ctx)
	if err != nil {
		return err
	}
	resp.Stats = stats
	return nil
}

func (s *service) AttendanceClear(_ AttendanceClearRequest, resp *AttendanceClearResponse) error {
	cleared, err := s.kiosk.AttendanceClear(s.ctx)
	if err != nil {
		return err
	}
	resp.Cleared = cleared
	s.log().Info("attendance log cleared via IPC",
		logging.String(logging.FieldEventType, "attendance_cleared"),
		logging.Int("cleared", cleared))
	return nil
}

func (s *service) ScannerStart(_ ScannerStartRequest, resp *ScannerStartResponse) error {
	if err := s.kiosk.ScannerStart(); err != nil {
		resp.Message = err.Error()
	}
	resp.Snapshot = s.kiosk.ScannerSnapshot()
	return nil
}

func (s *service) ScannerStop(_ ScannerStopRequest, resp *ScannerStopResponse) error {
	s.kiosk.ScannerStop()
	resp.Snapshot = s.kiosk.ScannerSnapshot()
	return nil
}

func (s *service) LogTail(req LogTailRequest, resp *LogTailResponse) error {
	logPath := s.kiosk.LogPath()
	if logPath == "" {
		resp.Offset = 0
		return nil
	}
	wait := time.Duration(req.WaitMillis) * time.Millisecond
	if wait <= 0 && req.Follow {
		wait = time.Second
	}
	options := logs.TailOptions{
		Offset: req.Offset,
		Limit:  req.Limit,
		Follow: req.Follow,
		Wait:   wait,
	}
	ctx := s.ctx
	if req.Follow && wait > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(s.ctx, wait+500*time.Millisecond)
		defer cancel()
	}
	result, err := logs.Tail(ctx, logPath, options)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			resp.Offset = result.Offset
			return nil
		}
		return err
	}
	resp.Lines = result.Lines
	resp.Offset = result.Offset
	return nil
}

func (s *service) TestNotification(_ TestNotificationRequest, resp *TestNotificationResponse) error {
	sent, message, err := s.kiosk.TestNotification(s.ctx)
	resp.Sent = sent
	resp.Message = message
	return err
}
