//go:build opencl

package accel

/*
#cgo LDFLAGS: -lOpenCL
#cgo CFLAGS: -DCL_TARGET_OPENCL_VERSION=120 -DCL_USE_DEPRECATED_OPENCL_1_2_APIS

#include <stdlib.h>
#include <CL/cl.h>

static cl_context create_context(cl_platform_id platform, cl_uint n, cl_device_id* devices, cl_int* err) {
    cl_context_properties props[] = {CL_CONTEXT_PLATFORM, (cl_context_properties)platform, 0};
    return clCreateContext(props, n, devices, NULL, NULL, err);
}

// The same image is supplied for every device, as the runtime expects one
// binary per device.
static cl_program create_program(cl_context ctx, cl_uint n, cl_device_id* devices,
                                 const unsigned char* image, size_t length, cl_int* err) {
    size_t* lengths = malloc(n * sizeof(size_t));
    const unsigned char** images = malloc(n * sizeof(unsigned char*));
    cl_int* status = malloc(n * sizeof(cl_int));
    for (cl_uint i = 0; i < n; i++) {
        lengths[i] = length;
        images[i] = image;
    }
    cl_program program = clCreateProgramWithBinary(ctx, n, devices, lengths, images, status, err);
    free(lengths);
    free(images);
    free(status);
    return program;
}

static cl_int set_mem_arg(cl_kernel k, cl_uint index, cl_mem m) {
    return clSetKernelArg(k, index, sizeof(cl_mem), &m);
}

static cl_int set_float_arg(cl_kernel k, cl_uint index, cl_float v) {
    return clSetKernelArg(k, index, sizeof(cl_float), &v);
}

static cl_int enqueue_single(cl_command_queue q, cl_kernel k, cl_event* ev) {
    size_t global = 1, local = 1;
    return clEnqueueNDRangeKernel(q, k, 1, NULL, &global, &local, 0, NULL, ev);
}

static cl_int migrate_to_host(cl_command_queue q, cl_mem a, cl_mem b) {
    cl_mem objs[2] = {a, b};
    return clEnqueueMigrateMemObjects(q, 2, objs, CL_MIGRATE_MEM_OBJECT_HOST, 0, NULL, NULL);
}

static float* alloc_host_floats(size_t n) {
    void* p = NULL;
    if (posix_memalign(&p, 4096, n * sizeof(float)) != 0) {
        return NULL;
    }
    return (float*)p;
}
*/
import "C"

import (
	"fmt"
	"unsafe"
)

// OpenCL runs the kernel on a device found through the OpenCL ICD loader.
type OpenCL struct {
	deviceType DeviceType
	platform   C.cl_platform_id
	devices    []C.cl_device_id
	context    C.cl_context
	program    C.cl_program
	queue      C.cl_command_queue
	kernel     C.cl_kernel
	callBuf    C.cl_mem
	putBuf     C.cl_mem
	host       *C.float
	written    bool
	name       string
}

// OpenCLAvailable reports whether this binary was built with OpenCL support.
const OpenCLAvailable = true

func clError(op string, code C.cl_int) error {
	return NewRuntimeError(op, int(code), "OpenCL call failed")
}

func clDeviceType(t DeviceType) (C.cl_device_type, error) {
	switch t {
	case DeviceTypeAccelerator:
		return C.CL_DEVICE_TYPE_ACCELERATOR, nil
	case DeviceTypeGPU:
		return C.CL_DEVICE_TYPE_GPU, nil
	case DeviceTypeCPU:
		return C.CL_DEVICE_TYPE_CPU, nil
	case DeviceTypeAll:
		return C.CL_DEVICE_TYPE_ALL, nil
	}
	return 0, NewRuntimeError("select device", CodeInvalidDeviceType, "unknown device type %q", t)
}

// NewOpenCL enumerates platforms and creates a context on the first one that
// has devices of class deviceType.
func NewOpenCL(deviceType DeviceType) (Accelerator, error) {
	devType, err := clDeviceType(deviceType)
	if err != nil {
		return nil, err
	}

	var numPlatforms C.cl_uint
	if code := C.clGetPlatformIDs(0, nil, &numPlatforms); code != C.CL_SUCCESS {
		return nil, clError("get platforms", code)
	}
	if numPlatforms == 0 {
		return nil, NewRuntimeError("get platforms", CodePlatformNotFoundKHR, "no OpenCL platform installed")
	}
	platforms := make([]C.cl_platform_id, numPlatforms)
	if code := C.clGetPlatformIDs(numPlatforms, &platforms[0], nil); code != C.CL_SUCCESS {
		return nil, clError("get platforms", code)
	}

	for _, p := range platforms {
		var n C.cl_uint
		if code := C.clGetDeviceIDs(p, devType, 0, nil, &n); code != C.CL_SUCCESS || n == 0 {
			continue
		}
		devices := make([]C.cl_device_id, n)
		if code := C.clGetDeviceIDs(p, devType, n, &devices[0], nil); code != C.CL_SUCCESS {
			return nil, clError("get devices", code)
		}

		var code C.cl_int
		ctx := C.create_context(p, n, &devices[0], &code)
		if code != C.CL_SUCCESS {
			return nil, clError("create context", code)
		}

		return &OpenCL{
			deviceType: deviceType,
			platform:   p,
			devices:    devices,
			context:    ctx,
			name:       deviceName(devices[0]),
		}, nil
	}

	return nil, NewRuntimeError("get devices", CodeDeviceNotFound, "no %s device on any OpenCL platform", deviceType)
}

func deviceName(d C.cl_device_id) string {
	var size C.size_t
	if C.clGetDeviceInfo(d, C.CL_DEVICE_NAME, 0, nil, &size) != C.CL_SUCCESS || size == 0 {
		return "unknown OpenCL device"
	}
	buf := (*C.char)(C.malloc(size))
	defer C.free(unsafe.Pointer(buf))
	if C.clGetDeviceInfo(d, C.CL_DEVICE_NAME, size, unsafe.Pointer(buf), nil) != C.CL_SUCCESS {
		return "unknown OpenCL device"
	}
	return C.GoString(buf)
}

// DeviceName implements Accelerator.
func (o *OpenCL) DeviceName() string {
	return o.name
}

// LoadProgram builds image for every device of the context. On
// CL_BUILD_PROGRAM_FAILURE the build log of the first device is returned.
func (o *OpenCL) LoadProgram(image []byte) error {
	if len(image) == 0 {
		return NewRuntimeError("create program", CodeInvalidBinary, "binary image is empty")
	}

	bin := C.CBytes(image)
	defer C.free(bin)

	var code C.cl_int
	n := C.cl_uint(len(o.devices))
	o.program = C.create_program(o.context, n, &o.devices[0],
		(*C.uchar)(bin), C.size_t(len(image)), &code)
	if code != C.CL_SUCCESS {
		return clError("create program", code)
	}

	code = C.clBuildProgram(o.program, n, &o.devices[0], nil, nil, nil)
	if code == C.CL_BUILD_PROGRAM_FAILURE {
		return NewBuildError("build program", o.buildLog())
	}
	if code != C.CL_SUCCESS {
		return clError("build program", code)
	}
	return nil
}

func (o *OpenCL) buildLog() string {
	var size C.size_t
	dev := o.devices[0]
	if C.clGetProgramBuildInfo(o.program, dev, C.CL_PROGRAM_BUILD_LOG, 0, nil, &size) != C.CL_SUCCESS || size == 0 {
		return "no build log available"
	}
	buf := (*C.char)(C.malloc(size))
	defer C.free(unsafe.Pointer(buf))
	if C.clGetProgramBuildInfo(o.program, dev, C.CL_PROGRAM_BUILD_LOG, size, unsafe.Pointer(buf), nil) != C.CL_SUCCESS {
		return "no build log available"
	}
	return C.GoString(buf)
}

// Dispatch implements Accelerator. The kernel runs on the first device with
// a 1x1 range; both output buffers are migrated to the host before it
// returns.
func (o *OpenCL) Dispatch(kernel string, args KernelArgs) error {
	if o.program == nil {
		return NewRuntimeError("dispatch", CodeInvalidProgramExec, "no program loaded")
	}
	if o.written {
		return NewRuntimeError("dispatch", CodeInvalidOperation, "output buffers already written")
	}

	var code C.cl_int
	o.queue = C.clCreateCommandQueue(o.context, o.devices[0], 0, &code)
	if code != C.CL_SUCCESS {
		return clError("create command queue", code)
	}

	name := C.CString(kernel)
	defer C.free(unsafe.Pointer(name))
	o.kernel = C.clCreateKernel(o.program, name, &code)
	if code != C.CL_SUCCESS {
		return clError(fmt.Sprintf("create kernel %q", kernel), code)
	}

	o.host = C.alloc_host_floats(2)
	if o.host == nil {
		return NewRuntimeError("allocate buffers", CodeOutOfResources, "host allocation failed")
	}
	slots := (*[2]C.float)(unsafe.Pointer(o.host))
	flags := C.cl_mem_flags(C.CL_MEM_USE_HOST_PTR | C.CL_MEM_WRITE_ONLY)
	size := C.size_t(unsafe.Sizeof(slots[0]))
	o.callBuf = C.clCreateBuffer(o.context, flags, size, unsafe.Pointer(&slots[0]), &code)
	if code != C.CL_SUCCESS {
		return clError("create call buffer", code)
	}
	o.putBuf = C.clCreateBuffer(o.context, flags, size, unsafe.Pointer(&slots[1]), &code)
	if code != C.CL_SUCCESS {
		return clError("create put buffer", code)
	}

	if err := o.bindArgs(args); err != nil {
		return err
	}

	var event C.cl_event
	if code := C.enqueue_single(o.queue, o.kernel, &event); code != C.CL_SUCCESS {
		return clError("enqueue kernel", code)
	}
	defer C.clReleaseEvent(event)

	if code := C.migrate_to_host(o.queue, o.callBuf, o.putBuf); code != C.CL_SUCCESS {
		return clError("migrate buffers", code)
	}
	if code := C.clFinish(o.queue); code != C.CL_SUCCESS {
		return clError("finish queue", code)
	}
	if code := C.clWaitForEvents(1, &event); code != C.CL_SUCCESS {
		return clError("wait for kernel", code)
	}

	o.written = true
	return nil
}

func (o *OpenCL) bindArgs(args KernelArgs) error {
	if code := C.set_mem_arg(o.kernel, 0, o.callBuf); code != C.CL_SUCCESS {
		return clError("set arg 0", code)
	}
	if code := C.set_mem_arg(o.kernel, 1, o.putBuf); code != C.CL_SUCCESS {
		return clError("set arg 1", code)
	}

	scalars := []float32{
		args.Theta, args.Kappa, args.Xi, args.Rho,
		args.T, args.Rate, args.Volatility, args.S0, args.K,
	}
	for i, v := range scalars {
		idx := C.cl_uint(i + 2)
		if code := C.set_float_arg(o.kernel, idx, C.cl_float(v)); code != C.CL_SUCCESS {
			return clError(fmt.Sprintf("set arg %d", idx), code)
		}
	}
	return nil
}

// ReadOutputs implements Accelerator.
func (o *OpenCL) ReadOutputs() (Outputs, error) {
	if !o.written {
		return Outputs{}, NewRuntimeError("read outputs", CodeInvalidOperation, "kernel has not completed")
	}
	slots := (*[2]C.float)(unsafe.Pointer(o.host))
	return Outputs{Call: float32(slots[0]), Put: float32(slots[1])}, nil
}

// Close implements Accelerator.
func (o *OpenCL) Close() error {
	if o.putBuf != nil {
		C.clReleaseMemObject(o.putBuf)
		o.putBuf = nil
	}
	if o.callBuf != nil {
		C.clReleaseMemObject(o.callBuf)
		o.callBuf = nil
	}
	if o.kernel != nil {
		C.clReleaseKernel(o.kernel)
		o.kernel = nil
	}
	if o.queue != nil {
		C.clReleaseCommandQueue(o.queue)
		o.queue = nil
	}
	if o.program != nil {
		C.clReleaseProgram(o.program)
		o.program = nil
	}
	if o.context != nil {
		C.clReleaseContext(o.context)
		o.context = nil
	}
	if o.host != nil {
		C.free(unsafe.Pointer(o.host))
		o.host = nil
	}
	return nil
}
