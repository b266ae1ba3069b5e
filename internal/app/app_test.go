package app_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strconv"

	"github.com/golang/mock/gomock"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	accel "github.com/jwaldner/heston/accel_lib"
	"github.com/jwaldner/heston/internal/app"
	"github.com/jwaldner/heston/internal/report"
	testdata "github.com/jwaldner/heston/test_data"
)

var _ = Describe("App", func() {
	var (
		mockCtrl       *gomock.Controller
		mockAcc        *MockAccelerator
		stdout, stderr *bytes.Buffer
		factoryCalls   int
		a              *app.App
		dir            string
		binaryPath     string
	)

	BeforeEach(func() {
		for _, key := range []string{"HESTON_MODE", "HESTON_DEVICE_TYPE", "HESTON_KERNEL", "LOG_LEVEL", "LOG_FILE"} {
			GinkgoT().Setenv(key, "")
		}

		mockCtrl = gomock.NewController(GinkgoT())
		mockAcc = NewMockAccelerator(mockCtrl)
		mockAcc.EXPECT().DeviceName().Return("mock device").AnyTimes()

		stdout = new(bytes.Buffer)
		stderr = new(bytes.Buffer)
		factoryCalls = 0
		a = &app.App{
			Name:   "heston",
			Stdout: stdout,
			Stderr: stderr,
			NewAccelerator: func(accel.ExecutionMode, accel.DeviceType) (accel.Accelerator, error) {
				factoryCalls++
				return mockAcc, nil
			},
		}

		var err error
		dir, err = os.MkdirTemp("", "app")
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(os.RemoveAll, dir)

		binaryPath, err = testdata.WriteFile(dir, "kernel.xclbin", []byte("opaque image"))
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	Context("with a bad command line", func() {
		It("should print usage when -a is missing", func() {
			code := a.Run([]string{"-n", "hestonEuro", "-c", "6.8"})

			Expect(code).To(Equal(app.ExitUsage))
			Expect(stdout.String()).To(ContainSubstring("Usage: heston"))
			Expect(factoryCalls).To(BeZero())
		})

		It("should print usage for an unknown flag", func() {
			code := a.Run([]string{"-a", binaryPath, "-z"})

			Expect(code).To(Equal(app.ExitUsage))
			Expect(stdout.String()).To(ContainSubstring("flag provided but not defined: -z"))
			Expect(stdout.String()).To(ContainSubstring("Usage: heston"))
			Expect(factoryCalls).To(BeZero())
		})

		DescribeTable("should print usage and fail when help is requested",
			func(args ...string) {
				Expect(a.Run(args)).To(Equal(app.ExitUsage))
				Expect(stdout.String()).To(HavePrefix("Usage: heston"))
				Expect(factoryCalls).To(BeZero())
			},
			Entry("alone", "-h"),
			Entry("after other flags", "-c", "6.8", "-help"),
		)

		It("should report an unopenable log file as a runtime error", func() {
			logPath := filepath.Join(dir, "missing", "heston.log")

			code := a.Run([]string{"-a", binaryPath, "-log-file", logPath})

			Expect(code).To(Equal(app.ExitRuntime))
			Expect(stderr.String()).To(ContainSubstring("Error:\topen log file: "))
			Expect(stderr.String()).To(ContainSubstring("Code:\t-9999"))
			Expect(stdout.String()).To(BeEmpty())
			Expect(factoryCalls).To(BeZero())
		})
	})

	Context("with a mocked accelerator", func() {
		It("should report both prices", func() {
			gomock.InOrder(
				mockAcc.EXPECT().LoadProgram([]byte("opaque image")).Return(nil),
				mockAcc.EXPECT().Dispatch("hestonEuro", gomock.Any()).Return(nil),
				mockAcc.EXPECT().ReadOutputs().Return(accel.Outputs{Call: 6.75, Put: 3.5}, nil),
				mockAcc.EXPECT().Close().Return(nil),
			)

			code := a.Run([]string{"-a", binaryPath, "-c", "7.5"})

			Expect(code).To(Equal(app.ExitSuccess))
			Expect(stdout.String()).To(ContainSubstring("the call price is: 6.75\tthe difference with the reference value is 10%"))
			Expect(stdout.String()).To(ContainSubstring("the put price is: 3.5\n"))
		})

		It("should dump the build log and stop", func() {
			mockAcc.EXPECT().LoadProgram(gomock.Any()).
				Return(accel.NewBuildError("build program", "ERROR: bitstream targets a different shell\n"))
			mockAcc.EXPECT().Close()

			code := a.Run([]string{"-a", binaryPath})

			Expect(code).To(Equal(app.ExitBuild))
			Expect(stdout.String()).To(ContainSubstring("ERROR: bitstream targets a different shell"))
			Expect(stdout.String()).NotTo(ContainSubstring("price is"))
		})

		It("should report runtime errors with their code", func() {
			mockAcc.EXPECT().LoadProgram(gomock.Any()).Return(nil)
			mockAcc.EXPECT().Dispatch("hestonAsian", gomock.Any()).
				Return(accel.NewRuntimeError("create kernel", accel.CodeInvalidKernelName, "kernel not found"))
			mockAcc.EXPECT().Close()

			code := a.Run([]string{"-a", binaryPath, "-n", "hestonAsian"})

			Expect(code).To(Equal(app.ExitRuntime))
			Expect(stderr.String()).To(ContainSubstring("Error:\tcreate kernel: kernel not found\tCode:\t-46"))
			Expect(stdout.String()).NotTo(ContainSubstring("price is"))
		})

		It("should report a missing binary as a runtime error", func() {
			mockAcc.EXPECT().Close()

			code := a.Run([]string{"-a", binaryPath + ".missing"})

			Expect(code).To(Equal(app.ExitRuntime))
			Expect(stderr.String()).To(ContainSubstring("Code:\t-42"))
		})

		It("should fail when no accelerator can be created", func() {
			a.NewAccelerator = func(accel.ExecutionMode, accel.DeviceType) (accel.Accelerator, error) {
				return nil, accel.NewRuntimeError("get devices", accel.CodeDeviceNotFound, "no accelerator device")
			}

			code := a.Run([]string{"-a", binaryPath, "-m", "opencl"})

			Expect(code).To(Equal(app.ExitRuntime))
			Expect(stderr.String()).To(ContainSubstring("Code:\t-1"))
		})

		It("should report errors that carry no code", func() {
			mockAcc.EXPECT().LoadProgram(gomock.Any()).Return(nil)
			mockAcc.EXPECT().Dispatch(gomock.Any(), gomock.Any()).Return(errors.New("device lost"))
			mockAcc.EXPECT().Close()

			Expect(a.Run([]string{"-a", binaryPath})).To(Equal(app.ExitRuntime))
			Expect(stderr.String()).To(ContainSubstring("Error:\tdevice lost\tCode:\t-9999"))
		})
	})

	Context("with the emulator", func() {
		var (
			imagePath  string
			brokenPath string
		)

		BeforeEach(func() {
			a.NewAccelerator = accel.NewAccelerator

			var err error
			imagePath, err = testdata.WriteFile(dir, "hestonEuro.emu.yaml", testdata.EmulatorImage)
			Expect(err).NotTo(HaveOccurred())
			brokenPath, err = testdata.WriteFile(dir, "broken.emu.yaml", testdata.BrokenEmulatorImage)
			Expect(err).NotTo(HaveOccurred())
		})

		It("should print one call and one put price", func() {
			code := a.Run([]string{"-a", imagePath, "-m", "emulator"})

			Expect(code).To(Equal(app.ExitSuccess))
			Expect(regexp.MustCompile(`the call price is: `).FindAllString(stdout.String(), -1)).To(HaveLen(1))
			Expect(regexp.MustCompile(`the put price is: `).FindAllString(stdout.String(), -1)).To(HaveLen(1))
			Expect(stdout.String()).NotTo(ContainSubstring("difference"))
		})

		It("should print the relative error against the put reference", func() {
			code := a.Run([]string{"-a", imagePath, "-m", "emulator", "-p", "3.7"})
			Expect(code).To(Equal(app.ExitSuccess))

			m := regexp.MustCompile(`the put price is: ([0-9.]+)\tthe difference with the reference value is ([0-9.e+-]+)%`).
				FindStringSubmatch(stdout.String())
			Expect(m).To(HaveLen(3))
			put, _ := strconv.ParseFloat(m[1], 64)
			pct, _ := strconv.ParseFloat(m[2], 64)
			Expect(pct).To(BeNumerically("~", report.RelativeError(put, 3.7), 1e-3))
			Expect(stdout.String()).To(MatchRegexp(`the call price is: [0-9.]+\n`))
		})

		It("should print the build log of a broken image", func() {
			code := a.Run([]string{"-a", brokenPath, "-m", "emulator"})

			Expect(code).To(Equal(app.ExitBuild))
			Expect(stdout.String()).To(ContainSubstring("error(s) generated."))
			Expect(stdout.String()).NotTo(ContainSubstring("price is"))
		})

		It("should take model and engine settings from a config file", func() {
			configPath, err := testdata.WriteFile(dir, "heston.yaml", testdata.ConfigFile)
			Expect(err).NotTo(HaveOccurred())

			code := a.Run([]string{"-a", imagePath, "-f", configPath})

			Expect(code).To(Equal(app.ExitSuccess))
			Expect(stderr.String()).To(ContainSubstring("heston-emulator (software)"))
		})

		It("should fail on a kernel the image does not export", func() {
			code := a.Run([]string{"-a", imagePath, "-m", "emulator", "-n", "hestonAsian"})

			Expect(code).To(Equal(app.ExitRuntime))
			Expect(stderr.String()).To(ContainSubstring("Code:\t-46"))
		})

		It("should reject a zero maturity before pricing", func() {
			code := a.Run([]string{"-a", imagePath, "-m", "emulator", "-t", "0"})

			Expect(code).To(Equal(app.ExitRuntime))
			Expect(stderr.String()).To(ContainSubstring("Code:\t-30"))
			Expect(stdout.String()).NotTo(ContainSubstring("NaN"))
		})
	})
})
